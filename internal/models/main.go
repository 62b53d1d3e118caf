// Package models defines the core data structures for users, registrations,
// the service catalog, site settings, and uploaded files.
package models

import "time"

// Role identifies the access level of a user.
type Role string

const (
	// RoleAdmin marks back-office users who review and approve registrations.
	RoleAdmin Role = "admin"
	// RoleCustomer marks end users registering companies.
	RoleCustomer Role = "customer"
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Name is the display name of the user.
	Name string `json:"name"`
	// Email is the unique login email.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to the wire.
	PasswordHash []byte `json:"-"`
	// Role is either admin or customer.
	Role Role `json:"role"`
	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// Step identifies a stage in the fixed registration wizard sequence.
type Step string

const (
	StepContactDetails Step = "contact-details"
	StepCompanyDetails Step = "company-details"
	StepDocumentation  Step = "documentation"
	StepIncorporate    Step = "incorporate"
)

// stepOrder fixes the forward-only wizard sequence.
var stepOrder = map[Step]int{
	StepContactDetails: 0,
	StepCompanyDetails: 1,
	StepDocumentation:  2,
	StepIncorporate:    3,
}

// StepIndex returns the position of s in the wizard sequence,
// or -1 if s is not a known step.
func StepIndex(s Step) int {
	if i, ok := stepOrder[s]; ok {
		return i
	}
	return -1
}

// Status is the coarse lifecycle label of a registration.
type Status string

const (
	StatusPaymentProcessing       Status = "payment-processing"
	StatusPaymentRejected         Status = "payment-rejected"
	StatusDocumentationProcessing Status = "documentation-processing"
	StatusIncorporationProcessing Status = "incorporation-processing"
	StatusCompleted               Status = "completed"
)

// ValidStatus reports whether s is one of the five defined statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPaymentProcessing, StatusPaymentRejected,
		StatusDocumentationProcessing, StatusIncorporationProcessing,
		StatusCompleted:
		return true
	}
	return false
}

// FileReference is the lightweight pointer to an uploaded file stored
// inside a registration, as opposed to the full FileMetadata held by the
// file store.
type FileReference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
	// Status carries per-attachment review state where the workflow needs
	// it (currently only the balance payment receipt: approved/rejected).
	Status string `json:"status,omitempty"`
}

// ContactPerson is the customer contact for a registration.
type ContactPerson struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Shareholder is one entry of a registration's shareholder list.
type Shareholder struct {
	Name    string `json:"name"`
	NIC     string `json:"nic"`
	Address string `json:"address"`
	Shares  int    `json:"shares"`
}

// Director is one entry of a registration's director list.
type Director struct {
	Name    string `json:"name"`
	NIC     string `json:"nic"`
	Address string `json:"address"`
}

// DocumentSet groups the five legal documents attached to a registration,
// used both for the company-authored set and the customer-signed set.
type DocumentSet struct {
	Form1              *FileReference `json:"form1"`
	LetterOfEngagement *FileReference `json:"letterOfEngagement"`
	AOA                *FileReference `json:"aoa"`
	Form18             *FileReference `json:"form18"`
	AddressProof       *FileReference `json:"addressProof"`
}

// References returns the non-nil file references in the set.
func (d *DocumentSet) References() []*FileReference {
	if d == nil {
		return nil
	}
	var refs []*FileReference
	for _, r := range []*FileReference{d.Form1, d.LetterOfEngagement, d.AOA, d.Form18, d.AddressProof} {
		if r != nil {
			refs = append(refs, r)
		}
	}
	return refs
}

// Registration is the central aggregate: one company-incorporation case
// tracked through the four wizard steps.
type Registration struct {
	ID string `json:"id"`

	CurrentStep Step   `json:"currentStep"`
	Status      Status `json:"status"`

	// Approval gates set by administrator actions. Stored independently of
	// Status; the workflow keeps them consistent on the happy path but they
	// are not derived fields.
	PaymentApproved        bool `json:"paymentApproved"`
	DetailsApproved        bool `json:"detailsApproved"`
	DocumentsApproved      bool `json:"documentsApproved"`
	DocumentsPublished     bool `json:"documentsPublished"`
	DocumentsAcknowledged  bool `json:"documentsAcknowledged"`

	CompanyName        string `json:"companyName"`
	CompanyNameEnglish string `json:"companyNameEnglish"`
	CompanyNameSinhala string `json:"companyNameSinhala"`
	CompanyAddress     string `json:"companyAddress"`

	ContactPerson *ContactPerson `json:"contactPerson"`
	Shareholders  []Shareholder  `json:"shareholders"`
	Directors     []Director     `json:"directors"`

	PackageID     string `json:"packageId"`
	PaymentMethod string `json:"paymentMethod"`

	PaymentReceipt           *FileReference `json:"paymentReceipt"`
	BalancePaymentReceipt    *FileReference `json:"balancePaymentReceipt"`
	CompanyDocuments         *DocumentSet   `json:"companyDocuments"`
	CustomerDocuments        *DocumentSet   `json:"customerDocuments"`
	IncorporationCertificate *FileReference `json:"incorporationCertificate"`

	// AdditionalDocuments holds ad hoc attachments keyed by the wizard step
	// they were uploaded on.
	AdditionalDocuments map[string][]FileReference `json:"additionalDocuments"`

	// CreatedBy is the id of the customer who owns this case.
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileReferences returns every attachment referenced by the registration.
// Used for best-effort cascade cleanup on delete.
func (r *Registration) FileReferences() []*FileReference {
	var refs []*FileReference
	for _, f := range []*FileReference{r.PaymentReceipt, r.BalancePaymentReceipt, r.IncorporationCertificate} {
		if f != nil {
			refs = append(refs, f)
		}
	}
	refs = append(refs, r.CompanyDocuments.References()...)
	refs = append(refs, r.CustomerDocuments.References()...)
	for _, list := range r.AdditionalDocuments {
		for i := range list {
			refs = append(refs, &list[i])
		}
	}
	return refs
}

// Package is a priced incorporation offering. Either Price or the
// AdvanceAmount/BalanceAmount pair is set, depending on the payment plan.
type Package struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	AdvanceAmount float64  `json:"advanceAmount"`
	BalanceAmount float64  `json:"balanceAmount"`
	Features      []string `json:"features"`
	IsActive      bool     `json:"isActive"`
}

// BankDetail holds static payment instructions shown to customers.
type BankDetail struct {
	ID                     string `json:"id"`
	BankName               string `json:"bankName"`
	AccountName            string `json:"accountName"`
	AccountNumber          string `json:"accountNumber"`
	Branch                 string `json:"branch"`
	SwiftCode              string `json:"swiftCode"`
	AdditionalInstructions string `json:"additionalInstructions"`
	IsActive               bool   `json:"isActive"`
}

// SettingsID is the fixed id of the singleton settings row.
const SettingsID = "default"

// Settings is the singleton site configuration record.
type Settings struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	LogoURL        string `json:"logoUrl"`
	FaviconURL     string `json:"faviconUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// FileCategory partitions uploaded files on disk. Derived from the mime
// type, never supplied by the caller.
type FileCategory string

const (
	CategoryImages    FileCategory = "images"
	CategoryDocuments FileCategory = "documents"
	CategoryTemp      FileCategory = "temp"
)

// FileMetadata describes an uploaded file held by the file store.
type FileMetadata struct {
	ID             string       `json:"id"`
	OriginalName   string       `json:"originalName"`
	StoredFileName string       `json:"storedFileName"`
	FilePath       string       `json:"-"`
	MimeType       string       `json:"mimeType"`
	Size           int64        `json:"size"`
	Category       FileCategory `json:"category"`
	URL            string       `json:"url"`
	UploadedBy     string       `json:"uploadedBy,omitempty"`
	UploadedAt     time.Time    `json:"uploadedAt"`
}
