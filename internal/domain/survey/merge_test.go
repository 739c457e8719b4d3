package survey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	serverTS := base.Add(2 * time.Hour)

	tests := []struct {
		name        string
		remote      *Survey
		local       *Survey
		wantSource  Source
		wantVillage string
	}{
		{
			name:        "unsynced local wins even when server is newer",
			remote:      &Survey{ServerID: "S1", VillageName: "server", UpdatedAt: base.Add(time.Hour)},
			local:       &Survey{ServerID: "S1", LocalID: "local_1", VillageName: "local", UpdatedAt: base, Synced: false},
			wantSource:  SourceLocalUnsynced,
			wantVillage: "local",
		},
		{
			name:        "synced local with later updated_at wins",
			remote:      &Survey{ServerID: "S1", VillageName: "server", UpdatedAt: base},
			local:       &Survey{ServerID: "S1", LocalID: "local_1", VillageName: "local", UpdatedAt: base.Add(time.Minute), Synced: true},
			wantSource:  SourceLocalNewer,
			wantVillage: "local",
		},
		{
			name:        "server with later updated_at wins",
			remote:      &Survey{ServerID: "S1", VillageName: "server", UpdatedAt: base.Add(time.Minute)},
			local:       &Survey{ServerID: "S1", LocalID: "local_1", VillageName: "local", UpdatedAt: base, Synced: true},
			wantSource:  SourceServer,
			wantVillage: "server",
		},
		{
			name:        "equal timestamps go to the server",
			remote:      &Survey{ServerID: "S1", VillageName: "server", UpdatedAt: base},
			local:       &Survey{ServerID: "S1", LocalID: "local_1", VillageName: "local", UpdatedAt: base, Synced: true},
			wantSource:  SourceServer,
			wantVillage: "server",
		},
		{
			name:        "server_timestamp is used when updated_at is missing",
			remote:      &Survey{ServerID: "S1", VillageName: "server", ServerTimestamp: &serverTS},
			local:       &Survey{ServerID: "S1", LocalID: "local_1", VillageName: "local", UpdatedAt: base.Add(time.Hour), Synced: true},
			wantSource:  SourceServer,
			wantVillage: "server",
		},
		{
			name:        "only local",
			local:       &Survey{LocalID: "local_1", VillageName: "local", Synced: true},
			wantSource:  SourceLocalOnly,
			wantVillage: "local",
		},
		{
			name:        "only remote",
			remote:      &Survey{ServerID: "S1", VillageName: "server"},
			wantSource:  SourceServer,
			wantVillage: "server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := Resolve(tt.remote, tt.local)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantSource, source)
			assert.Equal(t, tt.wantVillage, got.VillageName)
		})
	}
}

func TestResolve_Nothing(t *testing.T) {
	got, source := Resolve(nil, nil)
	assert.Nil(t, got)
	assert.Empty(t, source)
}

func TestResolve_ServerWinKeepsLocalIdentity(t *testing.T) {
	remote := &Survey{ServerID: "S1", LocalID: "server_S1", UpdatedAt: base.Add(time.Hour)}
	local := &Survey{ServerID: "S1", LocalID: "local_1", StorageKey: 42, UpdatedAt: base, Synced: true}

	got, source := Resolve(remote, local)

	assert.Equal(t, SourceServer, source)
	assert.Equal(t, "local_1", got.LocalID)
	assert.Equal(t, int64(42), got.StorageKey)
	assert.Equal(t, "server_S1", remote.LocalID, "input must not be mutated")
}

func TestMergeList_MatchesResolve(t *testing.T) {
	remote := []Survey{
		{ServerID: "S1", VillageName: "server-1", UpdatedAt: base.Add(time.Hour)},
		{ServerID: "S2", VillageName: "server-2", UpdatedAt: base},
		{ServerID: "S3", VillageName: "server-3", UpdatedAt: base},
	}
	local := []Survey{
		{ServerID: "S1", LocalID: "local_1", VillageName: "local-1", UpdatedAt: base, Synced: true},
		{ServerID: "S2", LocalID: "local_2", VillageName: "local-2", UpdatedAt: base, Synced: false},
		{LocalID: "local_9", VillageName: "local-9", UpdatedAt: base},
	}

	merged := MergeList(remote, local)
	require.Len(t, merged, 4)

	assert.Equal(t, SourceServer, merged[0].Source)
	assert.Equal(t, "server-1", merged[0].VillageName)
	assert.Equal(t, "local_1", merged[0].LocalID)

	assert.Equal(t, SourceLocalUnsynced, merged[1].Source)
	assert.Equal(t, "local-2", merged[1].VillageName)

	assert.Equal(t, SourceServer, merged[2].Source)
	assert.Equal(t, "server-3", merged[2].VillageName)

	assert.Equal(t, SourceLocalOnly, merged[3].Source)
	assert.Equal(t, "local_9", merged[3].LocalID)

	for i := range remote[:2] {
		single, source := Resolve(&remote[i], &local[i])
		assert.Equal(t, source, merged[i].Source)
		assert.Equal(t, single.VillageName, merged[i].VillageName)
	}
}
