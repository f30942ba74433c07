package service

// RequireOwner is the single owner-only mutation rule: the requester must be
// the recorded owner of the resource. Identifiers compare as plain strings.
func RequireOwner(requesterID, ownerID string) error {
	if requesterID == "" || requesterID != ownerID {
		return ErrNotAuthorised
	}
	return nil
}
