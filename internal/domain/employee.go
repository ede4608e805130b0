package domain

import "time"

// EmployeeStatus captures employment state.
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "Active"
	EmployeeStatusInactive   EmployeeStatus = "Inactive"
	EmployeeStatusOnNotice   EmployeeStatus = "On Notice"
	EmployeeStatusTerminated EmployeeStatus = "Terminated"
)

// Valid reports whether s is a known employment state.
func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeStatusActive, EmployeeStatusInactive, EmployeeStatusOnNotice, EmployeeStatusTerminated:
		return true
	}
	return false
}

// Employee is the full employee record rendered on the details screen.
type Employee struct {
	ID            string             `json:"id"`
	EmployeeCode  string             `json:"employeeId"`
	FirstName     string             `json:"firstName"`
	LastName      string             `json:"lastName"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Gender        string             `json:"gender"`
	Birthday      *time.Time         `json:"birthday,omitempty"`
	Address       Address            `json:"address"`
	DateOfJoining *time.Time         `json:"dateOfJoining,omitempty"`
	DepartmentID  *string            `json:"departmentId,omitempty"`
	DesignationID *string            `json:"designationId,omitempty"`
	Status        EmployeeStatus     `json:"status"`
	About         string             `json:"about"`
	AvatarURL     string             `json:"avatarUrl"`
	Personal      PersonalInfo       `json:"personal"`
	Bank          BankInfo           `json:"bank"`
	Family        []FamilyMember     `json:"family"`
	Education     []Education        `json:"education"`
	Experience    []Experience       `json:"experience"`
	Emergency     []EmergencyContact `json:"emergencyContacts"`
	Assets        []Asset            `json:"assets"`
	Statutory     Statutory          `json:"statutory"`
	Permissions   Permissions        `json:"permissions"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// FullName joins first and last names.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Address is a postal address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PersonalInfo holds identity and marital details.
type PersonalInfo struct {
	PassportNo         string     `json:"passportNo"`
	PassportExpiry     *time.Time `json:"passportExpiryDate,omitempty"`
	Nationality        string     `json:"nationality"`
	Religion           string     `json:"religion"`
	MaritalStatus      string     `json:"maritalStatus"`
	EmploymentOfSpouse string     `json:"employmentOfSpouse"`
	NoOfChildren       int        `json:"noOfChildren"`
}

// BankInfo holds salary account details.
type BankInfo struct {
	AccountHolderName string `json:"accountHolderName" validate:"required,max=120" label:"Account Holder Name"`
	BankName          string `json:"bankName" validate:"required,max=120" label:"Bank Name"`
	AccountNumber     string `json:"accountNumber" validate:"required,max=34" label:"Account Number"`
	IFSCCode          string `json:"ifscCode"`
	Branch            string `json:"branch"`
}

// FamilyMember is one dependent or relative.
type FamilyMember struct {
	Name         string     `json:"familyMemberName" validate:"required" label:"Name"`
	Relationship string     `json:"relationship" validate:"required" label:"Relationship"`
	Phone        string     `json:"phone"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
}

// Education is one education history entry.
type Education struct {
	Institution string     `json:"institution" validate:"required" label:"Institution Name"`
	Course      string     `json:"course" validate:"required" label:"Course"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// Experience is one previous employment entry.
type Experience struct {
	Company     string     `json:"previousCompany" validate:"required" label:"Previous Company Name"`
	Designation string     `json:"designation" validate:"required" label:"Designation"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Current     bool       `json:"currentlyWorking"`
}

// EmergencyContact is a person to call in an emergency.
type EmergencyContact struct {
	Name         string `json:"name" validate:"required" label:"Name"`
	Relationship string `json:"relationship" validate:"required" label:"Relationship"`
	Phone1       string `json:"phone1" validate:"required" label:"Phone"`
	Phone2       string `json:"phone2"`
	Kind         string `json:"type"`
}

// Asset is company equipment issued to the employee.
type Asset struct {
	Name         string     `json:"assetName"`
	SerialNumber string     `json:"serialNumber"`
	IssuedOn     *time.Time `json:"issuedOn,omitempty"`
	Status       string     `json:"status"`
}

// Statutory holds tax and social security identifiers.
type Statutory struct {
	PAN            string `json:"pan"`
	UAN            string `json:"uan"`
	ESINumber      string `json:"esiNumber"`
	PFNumber       string `json:"pfNumber"`
	TaxRegime      string `json:"taxRegime"`
	ProfessionalTx bool   `json:"professionalTax"`
}
