package eligibility

// SignPermission is the explicit per-user override for document signing.
// Only an explicit revocation vetoes an otherwise eligible identity;
// "no opinion" and "granted" behave identically.
type SignPermission int

const (
	PermissionUnset SignPermission = iota
	PermissionGranted
	PermissionRevoked
)

func (p SignPermission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionRevoked:
		return "revoked"
	default:
		return "unset"
	}
}

// DocumentType tags which identity document backs a profile.
type DocumentType string

const (
	DocTypeCPF      DocumentType = "cpf"
	DocTypePassport DocumentType = "passport"
	DocTypeNone     DocumentType = ""
)

// Identity is the read-only slice of a user profile the resolver needs.
// CPF is the already-resolved canonical value: the directory layer performs
// the canonical-vs-legacy key precedence once, at assembly time, so this
// package never deals with storage keys.
type Identity struct {
	UserID     string
	CPF        string
	Passport   string
	DocType    DocumentType
	Permission SignPermission
}

// EffectiveDocType returns the explicit tag when present, otherwise infers
// it: a valid CPF wins, then a passport, then none.
func (i Identity) EffectiveDocType() DocumentType {
	if i.DocType != DocTypeNone {
		return i.DocType
	}
	if ValidCPF(i.CPF) {
		return DocTypeCPF
	}
	if i.Passport != "" {
		return DocTypePassport
	}
	return DocTypeNone
}
