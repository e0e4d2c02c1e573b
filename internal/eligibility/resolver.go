// Package eligibility decides whether a user may electronically sign a
// document. The rules are pure domain logic - no I/O, no side effects -
// so they stay centralized and testable.
package eligibility

// Classification is the outcome of resolving an identity against the
// signing rules. Every identity classifies into exactly one value.
type Classification string

const (
	// CanSign: valid CPF and no explicit revocation.
	CanSign Classification = "can_sign"
	// BlockedPassportOnly: a passport is registered but no valid CPF.
	// Passports are not accepted for legally valid digital signatures.
	BlockedPassportOnly Classification = "blocked_passport_only"
	// BlockedNoDocument: neither a valid CPF nor a passport.
	BlockedNoDocument Classification = "blocked_no_document"
	// BlockedRevoked: valid CPF but signing was explicitly revoked.
	BlockedRevoked Classification = "blocked_revoked"
)

// Block reasons surfaced to the UI and the signing endpoint.
const (
	ReasonPassportNotAccepted = "passport holders cannot sign: a passport is not accepted for legally valid digital signatures, a valid CPF is required"
	ReasonNoCPF               = "no valid CPF registered for this account"
	ReasonRevoked             = "document signing has been revoked for this account"
)

// Masked identity labels for blocked classifications.
const (
	maskedLabelCPF       = "CPF: "
	maskedPassportOnly   = "passport not accepted for signing"
	maskedNoCPF          = "no CPF registered"
	maskedSigningRevoked = "signing permission revoked"
)

// Result carries the classification plus the strings the consuming layer
// renders: a block reason (empty when signing is allowed) and a masked
// identity line that never exposes the full CPF.
type Result struct {
	Classification Classification
	BlockReason    string
	MaskedIdentity string
}

// Eligible reports whether the identity may sign.
func (r Result) Eligible() bool { return r.Classification == CanSign }

// Resolve classifies an identity against the signing rules.
// Rule priority (fail-fast, mirroring the regulation):
//  1. A valid CPF is the baseline; without one a passport can never
//     substitute, regardless of any permission override.
//  2. An explicit revocation vetoes an otherwise valid CPF.
func Resolve(id Identity) Result {
	cpf := NormalizeCPF(id.CPF)
	hasValidCPF := len(cpf) == cpfLength

	if hasValidCPF {
		if id.Permission == PermissionRevoked {
			return Result{
				Classification: BlockedRevoked,
				BlockReason:    ReasonRevoked,
				MaskedIdentity: maskedSigningRevoked,
			}
		}
		return Result{
			Classification: CanSign,
			MaskedIdentity: maskedLabelCPF + MaskCPF(cpf),
		}
	}

	if id.Passport != "" {
		return Result{
			Classification: BlockedPassportOnly,
			BlockReason:    ReasonPassportNotAccepted,
			MaskedIdentity: maskedPassportOnly,
		}
	}

	return Result{
		Classification: BlockedNoDocument,
		BlockReason:    ReasonNoCPF,
		MaskedIdentity: maskedNoCPF,
	}
}
