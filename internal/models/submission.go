package models

// SubmissionKind distinguishes the two ways a contact form can be submitted.
type SubmissionKind int

const (
	SubmitCreate SubmissionKind = iota
	SubmitUpdate
)

func (k SubmissionKind) String() string {
	switch k {
	case SubmitCreate:
		return "create"
	case SubmitUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Submission says whether a form creates a new contact or updates an
// existing one. Build it with CreateSubmission or UpdateSubmission.
type Submission struct {
	Kind SubmissionKind
	ID   ContactID
}

// CreateSubmission targets a new contact.
func CreateSubmission() Submission {
	return Submission{Kind: SubmitCreate}
}

// UpdateSubmission targets the contact with the given id.
func UpdateSubmission(id ContactID) Submission {
	return Submission{Kind: SubmitUpdate, ID: id}
}
