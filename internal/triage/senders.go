package triage

import "log/slog"

// MergeSenderUpdates merges model-proposed profiles into the known-sender
// set. A profile with a known email replaces the stored one wholesale (this
// is not a field-level patch: an update that omits pinned loses the flag);
// an unknown email is appended. Updates without an email are dropped with a
// warning. Within a batch the last write wins per email.
func MergeSenderUpdates(known *SendersFile, updates []SenderProfile) *SendersFile {
	index := make(map[string]int, len(known.Senders))
	for i, s := range known.Senders {
		index[s.Email] = i
	}

	for _, u := range updates {
		if u.Email == "" {
			slog.Warn("sender profile without email, skipping", "name", u.Name)
			continue
		}
		if u.Importance == "" {
			u.Importance = ImportanceNormal
		}
		if u.Role == "" {
			u.Role = RoleOther
		}
		if i, ok := index[u.Email]; ok {
			known.Senders[i] = u
		} else {
			index[u.Email] = len(known.Senders)
			known.Senders = append(known.Senders, u)
		}
	}

	return known
}
