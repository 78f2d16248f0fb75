// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"context"
	"time"

	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

type mockPublisher struct {
	info        substrate.Info
	needsUpdate bool
	refreshErr  error
}

func (p *mockPublisher) IsUpdateNeeded() bool { return p.needsUpdate }

func (p *mockPublisher) Refresh(force bool) (bool, error) {
	if p.refreshErr != nil {
		return false, p.refreshErr
	}
	changed := force || p.needsUpdate
	p.needsUpdate = false
	return changed, nil
}

func (p *mockPublisher) Info() substrate.Info { return p.info }

type mockClock struct{ t time.Time }

func (c mockClock) Now() time.Time { return c.t }

type mockAction struct{ err error }

func (a mockAction) Run(context.Context) error { return a.err }

type mockUpdater struct {
	batches         [][]store.Item
	useExternalSync bool
}

func (u *mockUpdater) Update(items []store.Item) store.Action {
	u.batches = append(u.batches, items)
	return mockAction{}
}

func (u *mockUpdater) GetUseExternalSync(_, _, _ bool) bool { return u.useExternalSync }

type mockStore struct {
	*mockUpdater
	publishers map[string]store.Publisher
}

func newMockStore() *mockStore {
	return &mockStore{mockUpdater: &mockUpdater{}, publishers: make(map[string]store.Publisher)}
}

func (s *mockStore) GetPublisher(id substrate.ID) (store.Publisher, bool) {
	p, ok := s.publishers[id.FullName]
	return p, ok
}

func (s *mockStore) seed(id substrate.ID, info substrate.Info) *mockPublisher {
	p := &mockPublisher{info: info}
	s.publishers[id.FullName] = p
	return p
}
