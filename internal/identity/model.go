package identity

import "strings"

// Role mirrors the user_role enum of the profiles table.
type Role string

const (
	RolePatient   Role = "patient"
	RoleDoctor    Role = "doctor"
	RoleSurgeon   Role = "surgeon"
	RoleNurse     Role = "nurse"
	RoleCareGiver Role = "care_giver"
)

var Roles = []Role{RolePatient, RoleDoctor, RoleSurgeon, RoleNurse, RoleCareGiver}

// ParseRole accepts the enum value, case-insensitively. "caregiver" is
// accepted as an alias for care_giver.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "caregiver" {
		return RoleCareGiver, true
	}
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Clinical reports whether the role belongs to the clinical staff.
func (r Role) Clinical() bool {
	return r == RoleDoctor || r == RoleSurgeon || r == RoleNurse
}

type Profile struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	LicenseNumber  string `json:"license_number,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Department     string `json:"department,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Demo           bool   `json:"demo"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

const DemoProfileID = "demo-user"

var demoProfiles = map[Role]Profile{
	RolePatient:   {FirstName: "Demo", LastName: "Patient"},
	RoleDoctor:    {FirstName: "Dr. Demo", LastName: "Doctor", LicenseNumber: "MD123456", Specialization: "Cardiology", Department: "Cardiology"},
	RoleSurgeon:   {FirstName: "Dr. Demo", LastName: "Surgeon", LicenseNumber: "MD789012", Specialization: "Cardiac Surgery", Department: "Surgery"},
	RoleNurse:     {FirstName: "Demo", LastName: "Nurse", LicenseNumber: "RN345678", Department: "Cardiac Care Unit"},
	RoleCareGiver: {FirstName: "Demo", LastName: "Caregiver", Department: "Patient Care"},
}

// DemoProfile returns the in-memory profile used when nobody is signed in.
// Unknown roles get the patient profile.
func DemoProfile(role Role) Profile {
	p, ok := demoProfiles[role]
	if !ok {
		role = RolePatient
		p = demoProfiles[RolePatient]
	}
	p.ID = DemoProfileID
	p.Role = role
	p.Demo = true
	return p
}
