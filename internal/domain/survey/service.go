package survey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"sampark/internal/domain/outbox"
)

// Servicer is the local-first survey API used by the UI layer.
type Servicer interface {
	Create(ctx context.Context, in Input) (*Survey, error)
	Update(ctx context.Context, id string, in Input) (*Survey, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Merged, error)
	Get(ctx context.Context, id string) (*Merged, error)
}

type Service struct {
	repo        Repository
	remote      Remote
	conn        Connectivity
	log         *slog.Logger
	panchayatID string
	now         func() time.Time
}

// NewService builds the survey service. remote and conn may be nil, in which
// case reads never leave the device.
func NewService(repo Repository, remote Remote, conn Connectivity, panchayatID string, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		remote:      remote,
		conn:        conn,
		log:         log.With("component", "survey_service"),
		panchayatID: panchayatID,
		now:         time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*Survey, error) {
	now := s.now().UTC()

	sv := &Survey{
		LocalID:         NewLocalID(now),
		ClientSurveyID:  NewClientSurveyID(now),
		PanchayatID:     in.PanchayatID,
		VillageName:     in.VillageName,
		Modules:         in.Modules,
		CreatedAt:       now,
		UpdatedAt:       now,
		ClientTimestamp: now,
		SyncStatus:      StatusPending,
	}
	if sv.PanchayatID == "" {
		sv.PanchayatID = s.panchayatID
	}
	if in.ClientTimestamp != nil {
		sv.ClientTimestamp = in.ClientTimestamp.UTC()
	}
	if in.IsDraft != nil {
		sv.IsDraft = *in.IsDraft
	}

	pct := 0
	if in.CompletionPercentage != nil {
		pct = *in.CompletionPercentage
	}
	sv.SetCompletion(pct)

	if err := sv.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.ApplyLocalMutation(ctx, outbox.ActionCreate, sv); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}

	s.log.Info("survey created locally", "local_id", sv.LocalID, "client_survey_id", sv.ClientSurveyID, "draft", sv.IsDraft)
	return sv, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Survey, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	sv, err := s.repo.FindSurvey(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.PanchayatID != "" {
		sv.PanchayatID = in.PanchayatID
	}
	if in.VillageName != "" {
		sv.VillageName = in.VillageName
	}
	sv.Modules = sv.Modules.Merge(in.Modules)
	if in.CompletionPercentage != nil {
		sv.SetCompletion(*in.CompletionPercentage)
	}
	if in.IsDraft != nil {
		sv.IsDraft = *in.IsDraft
	}
	if in.ClientTimestamp != nil {
		sv.ClientTimestamp = in.ClientTimestamp.UTC()
	}

	if err := sv.Validate(); err != nil {
		return nil, err
	}

	sv.UpdatedAt = s.now().UTC()
	sv.Synced = false
	sv.SyncedAt = nil
	sv.SyncStatus = StatusPending

	if _, err := s.repo.ApplyLocalMutation(ctx, outbox.ActionUpdate, sv); err != nil {
		return nil, fmt.Errorf("update survey %s: %w", id, err)
	}

	s.log.Info("survey updated locally", "local_id", sv.LocalID, "survey_id", sv.ServerID)
	return sv, nil
}

// Delete tombstones the record; the row goes away once the delete reaches the server.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	sv, err := s.repo.FindSurvey(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.ApplyLocalMutation(ctx, outbox.ActionDelete, sv); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}

	s.log.Info("survey deleted locally", "local_id", sv.LocalID, "survey_id", sv.ServerID)
	return nil
}

// List returns local records merged with the server listing when the server is reachable.
// Tombstones take part in the merge so a pending delete hides the server copy.
func (s *Service) List(ctx context.Context, f Filter) ([]Merged, error) {
	f.IncludeDeleted = true
	local, err := s.repo.ListSurveys(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list local surveys: %w", err)
	}

	if !s.canReadRemote() || f.Synced != nil || f.ServerID != "" {
		return tagLocal(local), nil
	}

	panchayatID := f.PanchayatID
	if panchayatID == "" {
		panchayatID = s.panchayatID
	}

	remote, err := s.remote.ListSurveys(ctx, panchayatID)
	if err != nil {
		s.log.Warn("server listing unavailable, serving local copy", "error", err)
		return tagLocal(local), nil
	}

	merged := MergeList(remote, local)
	out := merged[:0]
	for i := range merged {
		if merged[i].Deleted {
			continue
		}
		if merged[i].Source == SourceServer {
			s.storeSnapshot(ctx, &merged[i].Survey)
		}
		out = append(out, merged[i])
	}

	return out, nil
}

// Get resolves a single record with the same precedence as List.
func (s *Service) Get(ctx context.Context, id string) (*Merged, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	local, err := s.repo.FindSurvey(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if local == nil {
		deleted, err := s.repo.HasTombstone(ctx, id)
		if err != nil {
			return nil, err
		}
		if deleted {
			return nil, ErrNotFound
		}
	}

	// Unsynced local edits win regardless of the server copy
	var remote *Survey
	if s.canReadRemote() && (local == nil || local.Synced) {
		serverID := id
		if local != nil {
			serverID = local.RemoteID()
		}
		if !IsPlaceholder(serverID) {
			remote, err = s.remote.GetSurvey(ctx, serverID)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					s.log.Warn("server copy unavailable", "survey_id", serverID, "error", err)
				}
				remote = nil
			}
		}
	}

	winner, source := Resolve(remote, local)
	if winner == nil {
		return nil, ErrNotFound
	}
	if source == SourceServer {
		s.storeSnapshot(ctx, winner)
	}

	return &Merged{Survey: *winner, Source: source}, nil
}

func (s *Service) canReadRemote() bool {
	return s.remote != nil && s.conn != nil && s.conn.IsOnline()
}

func (s *Service) storeSnapshot(ctx context.Context, sv *Survey) {
	if sv.ServerID == "" {
		return
	}
	if err := s.repo.ApplyRemoteSnapshot(ctx, sv); err != nil && !errors.Is(err, ErrUnsyncedLocal) {
		s.log.Warn("failed to store server snapshot", "survey_id", sv.ServerID, "error", err)
	}
}

func tagLocal(local []Survey) []Merged {
	out := make([]Merged, 0, len(local))
	for _, sv := range local {
		if sv.Deleted {
			continue
		}
		source := SourceLocalOnly
		if !sv.Synced {
			source = SourceLocalUnsynced
		}
		out = append(out, Merged{Survey: sv, Source: source})
	}
	return out
}
