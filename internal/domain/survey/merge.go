package survey

import "time"

// Source tells which copy won a merge.
type Source string

const (
	SourceServer        Source = "server"
	SourceLocalUnsynced Source = "local_unsynced"
	SourceLocalNewer    Source = "local_newer"
	SourceLocalOnly     Source = "local_only"
)

// Merged is a resolved survey together with the copy it came from.
type Merged struct {
	Survey
	Source Source `json:"source"`
}

func (m Merged) LocalWins() bool {
	return m.Source != SourceServer
}

// Resolve picks between the server and local copy of one record:
//  1. unsynced local edits always win;
//  2. otherwise the strictly newer updated_at wins, ties go to the server;
//  3. a missing side loses.
//
// A winning server copy keeps the local identity so callers can address it.
func Resolve(remote, local *Survey) (*Survey, Source) {
	switch {
	case remote == nil && local == nil:
		return nil, ""
	case remote == nil:
		return local, SourceLocalOnly
	case local == nil:
		return remote, SourceServer
	case !local.Synced:
		return local, SourceLocalUnsynced
	case local.UpdatedAt.After(remoteTime(remote)):
		return local, SourceLocalNewer
	}

	winner := *remote
	winner.LocalID = local.LocalID
	winner.StorageKey = local.StorageKey
	return &winner, SourceServer
}

func remoteTime(s *Survey) time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	if s.ServerTimestamp != nil {
		return *s.ServerTimestamp
	}
	return time.Time{}
}

// MergeList resolves a server listing against local records. Server order is
// kept, local records unknown to the server follow in their local order.
func MergeList(remote, local []Survey) []Merged {
	byKey := make(map[string]*Survey, len(local))
	for i := range local {
		byKey[local[i].Key()] = &local[i]
	}

	out := make([]Merged, 0, len(remote)+len(local))
	seen := make(map[string]struct{}, len(remote))

	for i := range remote {
		key := remote[i].Key()
		seen[key] = struct{}{}

		winner, source := Resolve(&remote[i], byKey[key])
		out = append(out, Merged{Survey: *winner, Source: source})
	}

	for i := range local {
		if _, ok := seen[local[i].Key()]; ok {
			continue
		}
		winner, source := Resolve(nil, &local[i])
		out = append(out, Merged{Survey: *winner, Source: source})
	}

	return out
}
