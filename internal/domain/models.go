package domain

import "time"

// Enumerations
const (
	RoleAdmin  UserRole = "admin"
	RoleStaff  UserRole = "staff"
	RoleParent UserRole = "parent"

	RelationFather GuardianRelation = "father"
	RelationMother GuardianRelation = "mother"
	RelationOther  GuardianRelation = "other"

	StaffTeacher    StaffRole = "teacher"
	StaffSupervisor StaffRole = "supervisor"
	StaffAdmin      StaffRole = "admin_staff"

	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"

	InvoicePaid    InvoiceStatus = "paid"
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoiceOverdue InvoiceStatus = "overdue"

	LogInfo    ActivityLogType = "info"
	LogWarning ActivityLogType = "warning"
	LogError   ActivityLogType = "error"

	FirstDayNextMonth DueDateStrategy = "first_day_next_month"
	LastDayNextMonth  DueDateStrategy = "last_day_next_month"
)

type UserRole string
type GuardianRelation string
type StaffRole string
type AttendanceStatus string
type InvoiceStatus string
type DueDateStrategy string
type ActivityLogType string

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleParent:
		return true
	}
	return false
}

func (s DueDateStrategy) Valid() bool {
	return s == FirstDayNextMonth || s == LastDayNextMonth
}

// Store paths. Entities live under a collection keyed by their push id.
const (
	PathChildren        = "children"
	PathStaff           = "staff"
	PathInvoices        = "invoices"
	PathAttendance      = "attendance"
	PathStaffAttendance = "staffAttendance"
	PathSettings        = "settings/nursery"
	PathUsers           = "users"
	PathDeviceTokens    = "deviceTokens"
	PathActivityLogs    = "activityLogs"
)

type Guardian struct {
	Name      string           `json:"name"`
	Relation  GuardianRelation `json:"relation"`
	Phone     string           `json:"phone"`
	Email     string           `json:"email"`
	AccountID string           `json:"accountId,omitempty"`
}

type Child struct {
	ID           string   `json:"-"`
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	Address      string   `json:"address"`
	HealthStatus string   `json:"healthStatus"`
	Guardian     Guardian `json:"guardian"`
	QRCodeID     string   `json:"qrCodeId"`
}

type Staff struct {
	ID             string    `json:"-"`
	Name           string    `json:"name"`
	Role           StaffRole `json:"role"`
	Specialization string    `json:"specialization,omitempty"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	QRCodeID       string    `json:"qrCodeId"`
	AccountID      string    `json:"accountId,omitempty"`
}

// AttendanceRecord is one child's presence for one calendar day.
type AttendanceRecord struct {
	ID        string           `json:"-"`
	ChildID   string           `json:"childId"`
	ChildName string           `json:"childName"`
	Date      string           `json:"date"`
	CheckIn   *TimeOfDay       `json:"checkIn"`
	CheckOut  *TimeOfDay       `json:"checkOut"`
	Status    AttendanceStatus `json:"status"`
}

// StaffAttendanceRecord mirrors AttendanceRecord for staff members.
type StaffAttendanceRecord struct {
	ID        string           `json:"-"`
	StaffID   string           `json:"staffId"`
	StaffName string           `json:"staffName"`
	Date      string           `json:"date"`
	CheckIn   *TimeOfDay       `json:"checkIn"`
	CheckOut  *TimeOfDay       `json:"checkOut"`
	Status    AttendanceStatus `json:"status"`
}

type Invoice struct {
	ID          string        `json:"-"`
	ChildID     string        `json:"childId"`
	ChildName   string        `json:"childName"`
	Amount      float64       `json:"amount"`
	IssueDate   string        `json:"issueDate"`
	DueDate     string        `json:"dueDate"`
	Status      InvoiceStatus `json:"status"`
	PaymentDate *string       `json:"paymentDate"`
}

type NurserySettings struct {
	CheckInStartTime    TimeOfDay       `json:"checkInStartTime"`
	CheckInEndTime      TimeOfDay       `json:"checkInEndTime"`
	CheckOutStartTime   TimeOfDay       `json:"checkOutStartTime"`
	CheckOutEndTime     TimeOfDay       `json:"checkOutEndTime"`
	NextDueDateStrategy DueDateStrategy `json:"nextDueDateStrategy"`
}

// DefaultSettings is written to the store the first time settings are read and none exist.
func DefaultSettings() NurserySettings {
	return NurserySettings{
		CheckInStartTime:    NewTimeOfDay(7, 0),
		CheckInEndTime:      NewTimeOfDay(10, 0),
		CheckOutStartTime:   NewTimeOfDay(13, 0),
		CheckOutEndTime:     NewTimeOfDay(16, 0),
		NextDueDateStrategy: FirstDayNextMonth,
	}
}

// UserProfile links an auth identity (keyed by account id) to a Staff or Child record.
type UserProfile struct {
	Role   UserRole `json:"role"`
	LinkID string   `json:"linkId"`
}

type DeviceToken struct {
	Token        string    `json:"token"`
	Platform     string    `json:"platform"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type ActivityLog struct {
	ID       string          `json:"-"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Actor    string          `json:"actor"`
	Type     ActivityLogType `json:"type"`
	LoggedAt time.Time       `json:"loggedAt"`
}

// Credential is a freshly generated login, surfaced once and never stored in plaintext.
type Credential struct {
	AccountID string
	LinkID    string
	Name      string
	Email     string
	Phone     string
	Password  string
}
