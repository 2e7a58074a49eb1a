package store

import (
	"context"
	"errors"
	"sync"

	"ops-dashboard/models"
)

type (
	LogisticsRemote = Remote[models.LogisticsItem, models.NewLogisticsItem, models.LogisticsItemPatch]
	ManifestRemote  = Remote[models.ManifestItem, models.NewManifestItem, models.ManifestItemPatch]
)

type SectorSource interface {
	Select(ctx context.Context, q models.Query) ([]models.Sector, error)
}

// LogisticsStore holds the shopping list, the read-only sectors and the travel
// manifest. Items and manifest entries keep creation order.
type LogisticsStore struct {
	*Collection[models.LogisticsItem, models.NewLogisticsItem, models.LogisticsItemPatch]

	Manifest *Collection[models.ManifestItem, models.NewManifestItem, models.ManifestItemPatch]

	sectorSource SectorSource
	secMu        sync.RWMutex
	sectors      []models.Sector
}

func NewLogisticsStore(items LogisticsRemote, manifest ManifestRemote, sectors SectorSource, opts ...Option) *LogisticsStore {
	return &LogisticsStore{
		Collection: NewCollection(models.TableLogisticsItems, items,
			func(it models.LogisticsItem) string { return it.ID },
			func(a, b models.LogisticsItem) bool { return a.CreatedAt.Before(b.CreatedAt) },
			opts...),
		Manifest: NewCollection(models.TableManifestItems, manifest,
			func(m models.ManifestItem) string { return m.ID },
			func(a, b models.ManifestItem) bool { return a.CreatedAt.Before(b.CreatedAt) },
			opts...),
		sectorSource: sectors,
	}
}

// FetchAll loads items, manifest and sectors.
func (s *LogisticsStore) FetchAll(ctx context.Context) error {
	return errors.Join(s.Fetch(ctx), s.Manifest.Fetch(ctx), s.FetchSectors(ctx))
}

func (s *LogisticsStore) FetchSectors(ctx context.Context) error {
	if s.sectorSource == nil {
		return nil
	}
	sectors, err := s.sectorSource.Select(ctx, models.Query{})
	if err != nil {
		s.fail("sector fetch", err)
		return err
	}

	s.secMu.Lock()
	defer s.secMu.Unlock()
	s.sectors = sectors
	return nil
}

func (s *LogisticsStore) Sectors() []models.Sector {
	s.secMu.RLock()
	defer s.secMu.RUnlock()
	return append([]models.Sector(nil), s.sectors...)
}

// InSector returns the items filed under sectorID.
func (s *LogisticsStore) InSector(sectorID string) []models.LogisticsItem {
	var out []models.LogisticsItem
	for _, it := range s.Items() {
		if it.SectorID == sectorID {
			out = append(out, it)
		}
	}
	return out
}

// ToggleStatus flips an item between PENDING and ACQUIRED. A LOCATING item
// goes back to PENDING.
func (s *LogisticsStore) ToggleStatus(ctx context.Context, id string) error {
	item, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	next := item.Status.Toggled()
	return s.Update(ctx, id, models.LogisticsItemPatch{Status: &next})
}

// DeManifest removes an item from the list.
func (s *LogisticsStore) DeManifest(ctx context.Context, id string) error {
	return s.Delete(ctx, id)
}

func (s *LogisticsStore) AddManifestItem(ctx context.Context, name string, weightKg float64) (*models.ManifestItem, error) {
	return s.Manifest.Add(ctx, models.NewManifestItem{Name: name, WeightKg: weightKg})
}

// ToggleManifest flips whether a manifest entry is packed off.
func (s *LogisticsStore) ToggleManifest(ctx context.Context, id string) error {
	item, ok := s.Manifest.Get(id)
	if !ok {
		return ErrNotFound
	}
	return s.Manifest.Update(ctx, id, models.ManifestItemPatch{IsDeManifested: models.Ptr(!item.IsDeManifested)})
}

// ResetManifest puts every de-manifested entry back on the manifest. It keeps
// going after a failed update and returns the errors joined.
func (s *LogisticsStore) ResetManifest(ctx context.Context) error {
	var errs []error
	for _, item := range s.Manifest.Items() {
		if !item.IsDeManifested {
			continue
		}
		if err := s.Manifest.Update(ctx, item.ID, models.ManifestItemPatch{IsDeManifested: models.Ptr(false)}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ManifestWeight is the total weight still on the manifest.
func (s *LogisticsStore) ManifestWeight() float64 {
	var total float64
	for _, item := range s.Manifest.Items() {
		if !item.IsDeManifested {
			total += item.WeightKg
		}
	}
	return total
}

// Subscribe watches both the item and manifest tables.
func (s *LogisticsStore) Subscribe(ctx context.Context, feed Feed) (<-chan struct{}, error) {
	ctx, cancel := context.WithCancel(ctx)
	items, err := s.Collection.Subscribe(ctx, feed)
	if err != nil {
		cancel()
		return nil, err
	}
	manifest, err := s.Manifest.Subscribe(ctx, feed)
	if err != nil {
		cancel()
		<-items
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		<-items
		<-manifest
	}()
	return done, nil
}
