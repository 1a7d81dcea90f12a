package models

// Role values for User.Role.
const (
	RoleClient   = "client"
	RoleEngineer = "engineer"
	RoleAdmin    = "admin"
)

// Survey status values. Transitions are owned by the lifecycle engine;
// signed and closed are reachable only through the generic status update.
const (
	SurveyScheduled  = "scheduled"
	SurveyInProgress = "in_progress"
	SurveyCompleted  = "completed"
	SurveySigned     = "signed"
	SurveyClosed     = "closed"
)

// Room status values.
const (
	RoomPending     = "pending"
	RoomInProgress  = "in_progress"
	RoomInspectedOK = "inspected_ok"
	RoomHasIssues   = "has_issues"
)

// Issue severity values.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Issue status values.
const (
	IssuePending    = "pending"
	IssueInProgress = "in_progress"
	IssueFixed      = "fixed"
	IssueWontFix    = "wont_fix"
)

// Property types for Client.PropertyType.
const (
	PropertyApartment = "apartment"
	PropertyHouse     = "house"
)

// Placeholder values written by engineers before a client registers. The
// reconciliation step on registration never overwrites anything else.
const (
	SentinelPending     = "Pending"
	SentinelNotProvided = "Not provided"
)

type User struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Email         string `json:"email" db:"email"`
	PasswordHash  string `json:"-" db:"password_hash"`
	Role          string `json:"role" db:"role"`
	LicenseNumber string `json:"license_number,omitempty" db:"license_number"`
	Company       string `json:"company,omitempty" db:"company"`
	Created       int64  `json:"created" db:"created"`
	Updated       int64  `json:"updated" db:"updated"`
}

// Client is the property-owner profile. UserID is nil until the person
// registers an account; floor and block apply to apartments only.
type Client struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Email          string  `json:"email" db:"email"`
	Phone          string  `json:"phone" db:"phone"`
	Address        string  `json:"address" db:"address"`
	PropertyType   string  `json:"property_type" db:"property_type"`
	PropertyNumber string  `json:"property_number" db:"property_number"`
	Floor          *string `json:"floor,omitempty" db:"floor"`
	Block          *string `json:"block,omitempty" db:"block"`
	UserID         *int64  `json:"user_id,omitempty" db:"user_id"`
	Created        int64   `json:"created" db:"created"`
	Updated        int64   `json:"updated" db:"updated"`

	UserAccount *User `json:"user_account,omitempty" db:"-"`
}

type Building struct {
	ID                  int64  `json:"id" db:"id"`
	Name                string `json:"name" db:"name"`
	Address             string `json:"address" db:"address"`
	ConstructionCompany string `json:"construction_company" db:"construction_company"`
	NumberOfFloors      int    `json:"number_of_floors" db:"number_of_floors"`
	NumberOfUnits       int    `json:"number_of_units" db:"number_of_units"`
	Created             int64  `json:"created" db:"created"`
	Updated             int64  `json:"updated" db:"updated"`
}

// BuildingClient links one Client to one Building. The pair is unique;
// re-linking an existing pair returns the existing row.
type BuildingClient struct {
	ID         int64 `json:"id" db:"id"`
	BuildingID int64 `json:"building_id" db:"building_id"`
	ClientID   int64 `json:"client_id" db:"client_id"`
	Created    int64 `json:"created" db:"created"`

	Building *Building `json:"building,omitempty" db:"-"`
	Client   *Client   `json:"client,omitempty" db:"-"`
}

type Survey struct {
	ID               int64  `json:"id" db:"id"`
	BuildingID       int64  `json:"building_id" db:"building_id"`
	ClientID         int64  `json:"client_id" db:"client_id"`
	EngineerID       int64  `json:"engineer_id" db:"engineer_id"`
	BuildingClientID *int64 `json:"building_client_id,omitempty" db:"building_client_id"`
	SurveyDate       int64  `json:"survey_date" db:"survey_date"`
	Status           string `json:"status" db:"status"`
	EngineerNotes    string `json:"engineer_notes,omitempty" db:"engineer_notes"`
	ClientSignature  string `json:"client_signature,omitempty" db:"client_signature"`
	FinalReport      string `json:"final_report,omitempty" db:"final_report"`
	Created          int64  `json:"created" db:"created"`
	Updated          int64  `json:"updated" db:"updated"`

	Building *Building `json:"building,omitempty" db:"-"`
	Client   *Client   `json:"client,omitempty" db:"-"`
	Engineer *UserRef  `json:"engineer,omitempty" db:"-"`
	Rooms    []Room    `json:"rooms,omitempty" db:"-"`
	Issues   []Issue   `json:"issues,omitempty" db:"-"`
}

// UserRef is the engineer summary exposed on survey and report projections.
type UserRef struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Company       string `json:"company,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
}

type Room struct {
	ID       int64  `json:"id" db:"id"`
	SurveyID int64  `json:"survey_id" db:"survey_id"`
	Name     string `json:"name" db:"name"`
	Status   string `json:"status" db:"status"`
	Notes    string `json:"notes,omitempty" db:"notes"`
	Created  int64  `json:"created" db:"created"`
	Updated  int64  `json:"updated" db:"updated"`

	Issues []Issue `json:"issues,omitempty" db:"-"`
}

// Issue records a defect against a room. SurveyID is denormalized from the
// parent room so survey-wide listings avoid a join.
type Issue struct {
	ID                int64   `json:"id" db:"id"`
	RoomID            int64   `json:"room_id" db:"room_id"`
	SurveyID          int64   `json:"survey_id" db:"survey_id"`
	Area              string  `json:"area" db:"area"`
	Description       string  `json:"description" db:"description"`
	Severity          string  `json:"severity" db:"severity"`
	Status            string  `json:"status" db:"status"`
	Photo             string  `json:"photo,omitempty" db:"photo"`
	RecommendedAction string  `json:"recommended_action,omitempty" db:"recommended_action"`
	EstimatedCost     float64 `json:"estimated_cost" db:"estimated_cost"`
	Created           int64   `json:"created" db:"created"`
	Updated           int64   `json:"updated" db:"updated"`
}

// ValidSurveyStatus reports whether s is a defined survey status.
func ValidSurveyStatus(s string) bool {
	switch s {
	case SurveyScheduled, SurveyInProgress, SurveyCompleted, SurveySigned, SurveyClosed:
		return true
	}
	return false
}

// ValidRoomStatus reports whether s is a defined room status.
func ValidRoomStatus(s string) bool {
	switch s {
	case RoomPending, RoomInProgress, RoomInspectedOK, RoomHasIssues:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a defined issue severity.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidIssueStatus reports whether s is a defined issue status.
func ValidIssueStatus(s string) bool {
	switch s {
	case IssuePending, IssueInProgress, IssueFixed, IssueWontFix:
		return true
	}
	return false
}

// ValidRole reports whether r is a defined user role.
func ValidRole(r string) bool {
	switch r {
	case RoleClient, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}

// ValidPropertyType reports whether p is a defined property type.
func ValidPropertyType(p string) bool {
	return p == PropertyApartment || p == PropertyHouse
}

// IsSentinel reports whether v is one of the placeholder values.
func IsSentinel(v string) bool {
	return v == "" || v == SentinelPending || v == SentinelNotProvided
}
