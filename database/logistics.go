package database

import (
	"database/sql"
	"fmt"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== LOGISTICS OPERATIONS ====================

func (r *Repository) ListSectors() ([]models.Sector, error) {
	rows, err := r.db.Query(`SELECT id, name, priority FROM sectors ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sectors := make([]models.Sector, 0)
	for rows.Next() {
		var s models.Sector
		var priority string
		if err := rows.Scan(&s.ID, &s.Name, &priority); err != nil {
			return nil, err
		}
		s.Priority = models.SectorPriority(priority)
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

func (r *Repository) checkSector(id string) error {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sectors WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sectors %s: %w", id, ErrInvalidReference)
	}
	return nil
}

const logisticsColumns = `id, user_id, name, qty, status, sector_id, category, kind, created_at, updated_at`

func scanLogisticsItem(row rowScanner) (*models.LogisticsItem, error) {
	var it models.LogisticsItem
	var status, kind string
	err := row.Scan(
		&it.ID, &it.UserID, &it.Name, &it.Qty, &status, &it.SectorID, &it.Category, &kind,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Status = models.LogisticStatus(status)
	it.Kind = models.ItemKind(kind)
	return &it, nil
}

func (r *Repository) ListLogisticsItems(userID string) ([]models.LogisticsItem, error) {
	rows, err := r.db.Query(
		`SELECT `+logisticsColumns+` FROM logistics_items WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.LogisticsItem, 0)
	for rows.Next() {
		it, err := scanLogisticsItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *Repository) GetLogisticsItem(userID, id string) (*models.LogisticsItem, error) {
	it, err := scanLogisticsItem(r.db.QueryRow(
		`SELECT `+logisticsColumns+` FROM logistics_items WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (r *Repository) CreateLogisticsItem(userID string, in models.NewLogisticsItem) (*models.LogisticsItem, error) {
	if err := r.checkSector(in.SectorID); err != nil {
		return nil, err
	}

	now := r.now()
	it := &models.LogisticsItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      in.Name,
		Qty:       in.Qty,
		Status:    models.LogisticPending,
		SectorID:  in.SectorID,
		Category:  in.Category,
		Kind:      in.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if it.Qty == 0 {
		it.Qty = 1
	}
	if it.Kind == "" {
		it.Kind = models.ItemSupply
	}

	_, err := r.db.Exec(`
		INSERT INTO logistics_items (id, user_id, name, qty, status, sector_id, category, kind,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID, userID, it.Name, it.Qty, string(it.Status), it.SectorID, it.Category,
		string(it.Kind), it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return nil, err
	}

	r.publish(models.TableLogisticsItems, models.ChangeInsert, userID, it.ID)
	return it, nil
}

func (r *Repository) UpdateLogisticsItem(userID, id string, patch models.LogisticsItemPatch) (*models.LogisticsItem, error) {
	if patch.SectorID != nil {
		if err := r.checkSector(*patch.SectorID); err != nil {
			return nil, err
		}
	}
	if err := r.updateColumns(r.db, "logistics_items", userID, id, patch.Columns()); err != nil {
		return nil, err
	}
	r.publish(models.TableLogisticsItems, models.ChangeUpdate, userID, id)
	return r.GetLogisticsItem(userID, id)
}

func (r *Repository) DeleteLogisticsItem(userID, id string) error {
	removed, err := r.deleteRow(r.db, "logistics_items", userID, id)
	if err != nil {
		return err
	}
	if removed {
		r.publish(models.TableLogisticsItems, models.ChangeDelete, userID, id)
	}
	return nil
}

// ==================== MANIFEST OPERATIONS ====================

const manifestColumns = `id, user_id, name, weight_kg, is_de_manifested, created_at, updated_at`

func scanManifestItem(row rowScanner) (*models.ManifestItem, error) {
	var m models.ManifestItem
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.WeightKg, &m.IsDeManifested, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ListManifestItems(userID string) ([]models.ManifestItem, error) {
	rows, err := r.db.Query(
		`SELECT `+manifestColumns+` FROM manifest_items WHERE user_id = ? ORDER BY created_at ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ManifestItem, 0)
	for rows.Next() {
		m, err := scanManifestItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (r *Repository) GetManifestItem(userID, id string) (*models.ManifestItem, error) {
	m, err := scanManifestItem(r.db.QueryRow(
		`SELECT `+manifestColumns+` FROM manifest_items WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *Repository) CreateManifestItem(userID string, in models.NewManifestItem) (*models.ManifestItem, error) {
	now := r.now()
	m := &models.ManifestItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      in.Name,
		WeightKg:  in.WeightKg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.Exec(`
		INSERT INTO manifest_items (id, user_id, name, weight_kg, is_de_manifested, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, m.ID, userID, m.Name, m.WeightKg, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.publish(models.TableManifestItems, models.ChangeInsert, userID, m.ID)
	return m, nil
}

func (r *Repository) UpdateManifestItem(userID, id string, patch models.ManifestItemPatch) (*models.ManifestItem, error) {
	if err := r.updateColumns(r.db, "manifest_items", userID, id, patch.Columns()); err != nil {
		return nil, err
	}
	r.publish(models.TableManifestItems, models.ChangeUpdate, userID, id)
	return r.GetManifestItem(userID, id)
}

func (r *Repository) DeleteManifestItem(userID, id string) error {
	removed, err := r.deleteRow(r.db, "manifest_items", userID, id)
	if err != nil {
		return err
	}
	if removed {
		r.publish(models.TableManifestItems, models.ChangeDelete, userID, id)
	}
	return nil
}
