package memory

import (
	"context"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/google/uuid"
)

type configRepo struct {
	v *view
}

func (r *configRepo) GetLatest(ctx context.Context) (*domain.ConfigSnapshot, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	configs := r.v.state().configs
	if len(configs) == 0 {
		return nil, domain.ErrConfigNotFound
	}
	return cloneConfig(configs[len(configs)-1]), nil
}

func (r *configRepo) CreateSnapshot(ctx context.Context, snapshot *domain.ConfigSnapshot) error {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	st := r.v.state()
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	snapshot.Version = int64(len(st.configs)) + 1
	snapshot.CreatedAt = r.v.now()
	st.configs = append(st.configs, cloneConfig(snapshot))
	return nil
}

func (r *configRepo) ListSnapshots(ctx context.Context, limit int) ([]*domain.ConfigSnapshot, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	configs := r.v.state().configs
	var out []*domain.ConfigSnapshot
	for i := len(configs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneConfig(configs[i]))
	}
	return out, nil
}
