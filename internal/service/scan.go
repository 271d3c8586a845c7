package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/metrics"
	"funnybanny-backend/internal/notify"
	"funnybanny-backend/internal/repository"
)

// Payload types carried by printed QR codes.
const (
	PayloadChild          = "child"
	PayloadStaff          = "staff"
	PayloadNurseryCheckIn = "nursery-check-in"
)

// ScanPayload is the JSON encoded in a QR code.
type ScanPayload struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	NurseryID string `json:"nurseryId,omitempty"`
}

// ParseScanPayload decodes a scanned code. Shape problems surface later as an invalid scan.
func ParseScanPayload(text string) (ScanPayload, error) {
	var p ScanPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return ScanPayload{}, err
	}
	return p, nil
}

type ScanAction string

const (
	ActionCheckIn  ScanAction = "check-in"
	ActionCheckOut ScanAction = "check-out"
)

// ClassifyScan maps a wall-clock time onto the configured windows, boundaries inclusive.
// The check-in window wins if the two were ever configured to overlap.
func ClassifyScan(now domain.TimeOfDay, s domain.NurserySettings) (ScanAction, bool) {
	switch {
	case now.Between(s.CheckInStartTime, s.CheckInEndTime):
		return ActionCheckIn, true
	case now.Between(s.CheckOutStartTime, s.CheckOutEndTime):
		return ActionCheckOut, true
	}
	return "", false
}

type SubjectKind string

const (
	SubjectChild SubjectKind = "child"
	SubjectStaff SubjectKind = "staff"
)

// AttendanceMutation is the single write a scan asks for: either a NewAttendance
// or a CheckOutAttendance.
type AttendanceMutation interface {
	subject() SubjectKind
}

// NewAttendance creates the day's record for a subject with no record yet.
type NewAttendance struct {
	Subject     SubjectKind
	SubjectID   string
	SubjectName string
	Date        string
	CheckIn     domain.TimeOfDay
}

// CheckOutAttendance sets the check-out time on an existing record.
type CheckOutAttendance struct {
	Subject  SubjectKind
	RecordID string
	CheckOut domain.TimeOfDay
}

func (m NewAttendance) subject() SubjectKind      { return m.Subject }
func (m CheckOutAttendance) subject() SubjectKind { return m.Subject }

type ScanOutcome string

const (
	ScanRecorded      ScanOutcome = "recorded"
	ScanRejected      ScanOutcome = "rejected"
	ScanNotFound      ScanOutcome = "not_found"
	ScanInvalid       ScanOutcome = "invalid"
	ScanOutsideWindow ScanOutcome = "outside_window"
	ScanFailed        ScanOutcome = "failed"
)

type ScanResult struct {
	Outcome     ScanOutcome
	Action      ScanAction
	Subject     SubjectKind
	SubjectID   string
	SubjectName string
	Message     string
	Mutation    AttendanceMutation
}

// Caller identifies who is scanning.
type Caller struct {
	AccountID string
	Role      domain.UserRole
	LinkID    string
}

// ScanInput is everything the resolver looks at. The slices are a snapshot and are
// only read.
type ScanInput struct {
	Payload         string
	Now             time.Time
	Settings        domain.NurserySettings
	Children        []domain.Child
	Staff           []domain.Staff
	ChildAttendance []domain.AttendanceRecord
	StaffAttendance []domain.StaffAttendanceRecord
	Caller          Caller
	// NurseryID, when set, must match the nurseryId carried by a nursery-check-in code.
	NurseryID string
}

const msgInvalidCode = "Invalid QR code or you are not allowed to scan it."

// attendee is the part of a record the rules care about.
type attendee struct {
	recordID string
	checkOut *domain.TimeOfDay
}

// ResolveScan decides whether a scan checks someone in or out and returns at most one
// mutation. It never returns an error: every refusal is a ScanResult with a message.
func ResolveScan(in ScanInput) ScanResult {
	now := domain.TimeOfDayOf(in.Now)
	s := in.Settings

	action, ok := ClassifyScan(now, s)
	if !ok {
		return ScanResult{
			Outcome: ScanOutsideWindow,
			Message: fmt.Sprintf("Scanning is not available now. Check-in is %s-%s and check-out is %s-%s.",
				s.CheckInStartTime, s.CheckInEndTime, s.CheckOutStartTime, s.CheckOutEndTime),
		}
	}

	payload, err := ParseScanPayload(in.Payload)
	if err != nil {
		return ScanResult{Outcome: ScanInvalid, Action: action, Message: msgInvalidCode}
	}

	today := in.Now.Format(domain.DateLayout)
	res := ScanResult{Action: action}
	var existing *attendee
	self := false

	switch {
	case payload.Type == PayloadChild && payload.ID != "" && canScanCodes(in.Caller.Role):
		child := findChildByQR(in.Children, payload.ID)
		if child == nil {
			return ScanResult{Outcome: ScanNotFound, Action: action, Subject: SubjectChild, Message: "Child not found."}
		}
		res.Subject, res.SubjectID, res.SubjectName = SubjectChild, child.ID, child.Name
		for _, a := range in.ChildAttendance {
			if a.ChildID == child.ID && a.Date == today {
				existing = &attendee{recordID: a.ID, checkOut: a.CheckOut}
				break
			}
		}

	case payload.Type == PayloadStaff && payload.ID != "" && canScanCodes(in.Caller.Role):
		member := findStaffByQR(in.Staff, payload.ID)
		if member == nil {
			return ScanResult{Outcome: ScanNotFound, Action: action, Subject: SubjectStaff, Message: "Staff member not found."}
		}
		res.Subject, res.SubjectID, res.SubjectName = SubjectStaff, member.ID, member.Name
		existing = findStaffRecord(in.StaffAttendance, member.ID, today)

	case payload.Type == PayloadNurseryCheckIn && in.Caller.Role == domain.RoleStaff && nurseryMatches(payload, in.NurseryID):
		member := findCallerStaff(in.Staff, in.Caller)
		if member == nil {
			return ScanResult{Outcome: ScanNotFound, Action: action, Subject: SubjectStaff, Message: "Your staff record could not be found."}
		}
		res.Subject, res.SubjectID, res.SubjectName = SubjectStaff, member.ID, member.Name
		existing = findStaffRecord(in.StaffAttendance, member.ID, today)
		self = true

	default:
		return ScanResult{Outcome: ScanInvalid, Action: action, Message: msgInvalidCode}
	}

	name := res.SubjectName
	if action == ActionCheckIn {
		if existing != nil {
			res.Outcome = ScanRejected
			res.Message = pick(self,
				fmt.Sprintf("Welcome %s! You have already checked in today.", name),
				fmt.Sprintf("%s has already checked in today.", name))
			return res
		}
		res.Outcome = ScanRecorded
		res.Mutation = NewAttendance{
			Subject:     res.Subject,
			SubjectID:   res.SubjectID,
			SubjectName: name,
			Date:        today,
			CheckIn:     now,
		}
		res.Message = pick(self,
			fmt.Sprintf("Check-in recorded at %s, %s.", now.Display(), name),
			fmt.Sprintf("%s checked in at %s.", name, now.Display()))
		return res
	}

	switch {
	case existing == nil:
		res.Outcome = ScanRejected
		res.Message = pick(self,
			fmt.Sprintf("You must check in first, %s.", name),
			fmt.Sprintf("%s has not checked in yet.", name))
	case existing.checkOut != nil:
		res.Outcome = ScanRejected
		res.Message = pick(self,
			fmt.Sprintf("Welcome back %s! You have already checked out today.", name),
			fmt.Sprintf("%s has already checked out today.", name))
	default:
		res.Outcome = ScanRecorded
		res.Mutation = CheckOutAttendance{Subject: res.Subject, RecordID: existing.recordID, CheckOut: now}
		res.Message = pick(self,
			fmt.Sprintf("Check-out recorded at %s, %s.", now.Display(), name),
			fmt.Sprintf("%s checked out at %s.", name, now.Display()))
	}
	return res
}

// NurseryPayload is the text printed on the nursery's own check-in code.
func NurseryPayload(nurseryID string) string {
	b, _ := json.Marshal(ScanPayload{Type: PayloadNurseryCheckIn, NurseryID: nurseryID})
	return string(b)
}

func nurseryMatches(p ScanPayload, nurseryID string) bool {
	return nurseryID == "" || p.NurseryID == "" || p.NurseryID == nurseryID
}

func canScanCodes(role domain.UserRole) bool {
	return role == domain.RoleAdmin || role == domain.RoleStaff
}

func pick(self bool, selfMsg, otherMsg string) string {
	if self {
		return selfMsg
	}
	return otherMsg
}

func findChildByQR(children []domain.Child, qr string) *domain.Child {
	for i := range children {
		if children[i].QRCodeID == qr {
			return &children[i]
		}
	}
	return nil
}

func findStaffByQR(staff []domain.Staff, qr string) *domain.Staff {
	for i := range staff {
		if staff[i].QRCodeID == qr {
			return &staff[i]
		}
	}
	return nil
}

// findCallerStaff resolves the signed-in staff member by profile link, falling back
// to the account id stored on the staff record.
func findCallerStaff(staff []domain.Staff, c Caller) *domain.Staff {
	for i := range staff {
		if c.LinkID != "" && staff[i].ID == c.LinkID {
			return &staff[i]
		}
	}
	for i := range staff {
		if c.AccountID != "" && staff[i].AccountID == c.AccountID {
			return &staff[i]
		}
	}
	return nil
}

func findStaffRecord(records []domain.StaffAttendanceRecord, staffID, date string) *attendee {
	for _, a := range records {
		if a.StaffID == staffID && a.Date == date {
			return &attendee{recordID: a.ID, checkOut: a.CheckOut}
		}
	}
	return nil
}

// ScanService resolves scans against fresh data and persists the result.
type ScanService struct {
	Snapshots       SnapshotService
	Attendance      repository.AttendanceRepository
	StaffAttendance repository.StaffAttendanceRepository
	Notifier        notify.Notifier
	Clock           Clock
	NurseryID       string
	Logger          *slog.Logger
}

// Scan never fails on policy; an error is returned only when the store cannot be
// read or written, in which case nothing was applied.
func (s ScanService) Scan(ctx context.Context, caller Caller, payload string) (ScanResult, error) {
	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	res := ResolveScan(ScanInput{
		Payload:         payload,
		Now:             s.Clock.current(),
		Settings:        snap.Settings,
		Children:        snap.Children,
		Staff:           snap.Staff,
		ChildAttendance: snap.Attendance,
		StaffAttendance: snap.StaffAttendance,
		Caller:          caller,
		NurseryID:       s.NurseryID,
	})

	if res.Mutation != nil {
		if err := s.Apply(ctx, res.Mutation); err != nil {
			metrics.Scans.WithLabelValues(string(res.Subject), string(ScanFailed)).Inc()
			return ScanResult{}, fmt.Errorf("record attendance: %w", err)
		}
		if res.Subject == SubjectChild {
			s.notifyGuardian(ctx, snap, res)
		}
	}
	metrics.Scans.WithLabelValues(string(res.Subject), string(res.Outcome)).Inc()
	s.Logger.Info("scan resolved", "outcome", res.Outcome, "action", res.Action, "subject", res.Subject, "subject_id", res.SubjectID)
	return res, nil
}

// Apply persists one attendance mutation.
func (s ScanService) Apply(ctx context.Context, m AttendanceMutation) error {
	switch m := m.(type) {
	case NewAttendance:
		checkIn := m.CheckIn
		if m.Subject == SubjectChild {
			_, err := s.Attendance.Create(ctx, domain.AttendanceRecord{
				ChildID:   m.SubjectID,
				ChildName: m.SubjectName,
				Date:      m.Date,
				CheckIn:   &checkIn,
				Status:    domain.AttendancePresent,
			})
			return err
		}
		_, err := s.StaffAttendance.Create(ctx, domain.StaffAttendanceRecord{
			StaffID:   m.SubjectID,
			StaffName: m.SubjectName,
			Date:      m.Date,
			CheckIn:   &checkIn,
			Status:    domain.AttendancePresent,
		})
		return err
	case CheckOutAttendance:
		if m.Subject == SubjectChild {
			return s.Attendance.SetCheckOut(ctx, m.RecordID, m.CheckOut)
		}
		return s.StaffAttendance.SetCheckOut(ctx, m.RecordID, m.CheckOut)
	}
	return fmt.Errorf("unknown attendance mutation %T", m)
}

func (s ScanService) notifyGuardian(ctx context.Context, snap *Snapshot, res ScanResult) {
	if s.Notifier == nil {
		return
	}
	child := snap.Child(res.SubjectID)
	if child == nil || child.Guardian.AccountID == "" {
		return
	}
	title := "Check-in"
	if res.Action == ActionCheckOut {
		title = "Check-out"
	}
	err := s.Notifier.Notify(ctx, child.Guardian.AccountID, notify.Message{
		Title: title,
		Body:  res.Message,
		Data: map[string]string{
			"childId": child.ID,
			"action":  string(res.Action),
		},
	})
	if err != nil {
		s.Logger.Warn("guardian notification failed", "child_id", child.ID, "err", err)
	}
}
