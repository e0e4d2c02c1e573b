package eligibility

// placeholderName is rendered when a roster entry has no display name.
const placeholderName = "Unnamed signer"

// SignerEntry is one party expected to sign a document, as supplied by the
// directory. Entries are display data; signing state lives with them.
type SignerEntry struct {
	UserID string
	Name   string
	Role   string
	Signed bool
}

// DisplayName returns the entry's name or a generic placeholder.
func (e SignerEntry) DisplayName() string {
	if e.Name == "" {
		return placeholderName
	}
	return e.Name
}

// PartitionRoster splits a signer roster into the viewer's own entry (nil
// when the viewer is not on the roster) and the remaining signers. Others
// keep their original order and are de-duplicated by user ID; the viewer
// never appears among them.
func PartitionRoster(entries []SignerEntry, viewerID string) (self *SignerEntry, others []SignerEntry) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.UserID == viewerID {
			if self == nil {
				own := e
				self = &own
			}
			continue
		}
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		others = append(others, e)
	}
	return self, others
}
