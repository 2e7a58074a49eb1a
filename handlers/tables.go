package handlers

import (
	"errors"
	"strconv"
	"time"

	"ops-dashboard/app"
	"ops-dashboard/database"
	"ops-dashboard/middleware"
	"ops-dashboard/models"
	"ops-dashboard/services"
	"ops-dashboard/validator"

	"github.com/gofiber/fiber/v2"
)

var (
	errBadBody  = errors.New("invalid request body")
	errReadOnly = errors.New("table is read-only")
)

// table binds the generic row endpoints to one backing table.
type table struct {
	list   func(userID string, q models.Query) (any, error)
	insert func(c *fiber.Ctx, userID string) (any, error)
	update func(c *fiber.Ctx, userID, id string) (any, error)
	remove func(userID, id string) error
}

// rows adapts typed repository calls to the generic endpoints. Nil insert,
// update or remove functions make the table read-only for that verb.
func rows[T, N, P any](
	v *validator.Validator,
	list func(userID string, q models.Query) ([]T, error),
	insert func(userID string, in N) (*T, error),
	update func(userID, id string, patch P) (*T, error),
	remove func(userID, id string) error,
) table {
	t := table{
		list: func(userID string, q models.Query) (any, error) {
			out, err := list(userID, q)
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = []T{}
			}
			return out, nil
		},
		insert: func(*fiber.Ctx, string) (any, error) { return nil, errReadOnly },
		update: func(*fiber.Ctx, string, string) (any, error) { return nil, errReadOnly },
		remove: func(string, string) error { return errReadOnly },
	}

	if insert != nil {
		t.insert = func(c *fiber.Ctx, userID string) (any, error) {
			var in N
			if err := decode(c, v, &in); err != nil {
				return nil, err
			}
			row, err := insert(userID, in)
			if err != nil {
				return nil, err
			}
			return row, nil
		}
	}
	if update != nil {
		t.update = func(c *fiber.Ctx, userID, id string) (any, error) {
			var patch P
			if err := decode(c, v, &patch); err != nil {
				return nil, err
			}
			row, err := update(userID, id, patch)
			if err != nil {
				return nil, err
			}
			if row == nil {
				return nil, database.ErrNotFound
			}
			return row, nil
		}
	}
	if remove != nil {
		t.remove = remove
	}
	return t
}

func decode(c *fiber.Ctx, v *validator.Validator, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errBadBody
	}
	return v.Validate(dst)
}

// ignoreQuery drops the select filters for tables that have none.
func ignoreQuery[T any](list func(userID string) ([]T, error)) func(string, models.Query) ([]T, error) {
	return func(userID string, _ models.Query) ([]T, error) {
		return list(userID)
	}
}

func tables(a *app.App) map[string]table {
	repo := a.Repo
	v := a.Validator

	return map[string]table{
		models.TableTasks: rows(v, repo.ListTasks, repo.CreateTask, repo.UpdateTask, repo.DeleteTask),
		models.TableProjects: rows(v, ignoreQuery(repo.ListProjects),
			repo.CreateProject, repo.UpdateProject, repo.DeleteProject),
		models.TableNotes: rows(v, repo.ListNotes, repo.CreateNote, repo.UpdateNote, repo.DeleteNote),
		models.TableFolders: rows(v, ignoreQuery(a.FolderService.List),
			a.FolderService.Create, a.FolderService.Update, a.FolderService.Delete),
		models.TableEvents: rows(v, repo.ListEvents, repo.CreateEvent, repo.UpdateEvent, repo.DeleteEvent),
		models.TableLogisticsItems: rows(v, ignoreQuery(repo.ListLogisticsItems),
			repo.CreateLogisticsItem, repo.UpdateLogisticsItem, repo.DeleteLogisticsItem),
		models.TableSectors: rows[models.Sector, struct{}, struct{}](v,
			func(string, models.Query) ([]models.Sector, error) { return repo.ListSectors() },
			nil, nil, nil),
		models.TableManifestItems: rows(v, ignoreQuery(repo.ListManifestItems),
			repo.CreateManifestItem, repo.UpdateManifestItem, repo.DeleteManifestItem),
	}
}

// parseQuery reads the select filters from the query string
func parseQuery(c *fiber.Ctx) (models.Query, error) {
	q := models.Query{
		ProjectID: c.Query("project_id"),
		FolderID:  c.Query("folder_id"),
	}

	var err error
	if q.Inbox, err = queryBool(c, "inbox"); err != nil {
		return q, err
	}
	if q.Favorites, err = queryBool(c, "favorite"); err != nil {
		return q, err
	}
	if q.From, err = queryTime(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = queryTime(c, "to"); err != nil {
		return q, err
	}
	return q, nil
}

func queryBool(c *fiber.Ctx, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(key + " must be true or false")
	}
	return b, nil
}

func queryTime(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(key + " must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}

func lookupTable(reg map[string]table, c *fiber.Ctx) (table, bool) {
	t, ok := reg[c.Params("table")]
	return t, ok
}

// tableError maps repository and service errors to responses
func tableError(c *fiber.Ctx, err error, action string) error {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, errBadBody):
		return badRequest(c, "Invalid request body")
	case errors.As(err, &fieldErrs):
		return validationError(c, err)
	case errors.Is(err, errReadOnly):
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Table is read-only"})
	case errors.Is(err, database.ErrNotFound), errors.Is(err, services.ErrFolderNotFound):
		return notFound(c, "Row not found")
	case errors.Is(err, database.ErrInvalidReference), errors.Is(err, models.ErrEventRange):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrFolderAlreadyExists):
		return conflict(c, "Folder with this name already exists")
	}
	return serverErrorWithDetails(c, "Failed to "+action, err)
}

// SelectRows lists the caller's rows of a table
func SelectRows(a *app.App) fiber.Handler {
	reg := tables(a)
	return func(c *fiber.Ctx) error {
		t, ok := lookupTable(reg, c)
		if !ok {
			return notFound(c, "Unknown table")
		}

		q, err := parseQuery(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		out, err := t.list(middleware.GetUserID(c), q)
		if err != nil {
			return tableError(c, err, "fetch rows")
		}
		return success(c, fiber.Map{"data": out})
	}
}

// InsertRow creates a row and returns it as stored
func InsertRow(a *app.App) fiber.Handler {
	reg := tables(a)
	return func(c *fiber.Ctx) error {
		t, ok := lookupTable(reg, c)
		if !ok {
			return notFound(c, "Unknown table")
		}

		row, err := t.insert(c, middleware.GetUserID(c))
		if err != nil {
			return tableError(c, err, "insert row")
		}
		return created(c, fiber.Map{"data": row})
	}
}

// UpdateRow applies a partial update and returns the updated row
func UpdateRow(a *app.App) fiber.Handler {
	reg := tables(a)
	return func(c *fiber.Ctx) error {
		t, ok := lookupTable(reg, c)
		if !ok {
			return notFound(c, "Unknown table")
		}

		row, err := t.update(c, middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return tableError(c, err, "update row")
		}
		return success(c, fiber.Map{"data": row})
	}
}

// DeleteRow removes a row. Unknown ids succeed.
func DeleteRow(a *app.App) fiber.Handler {
	reg := tables(a)
	return func(c *fiber.Ctx) error {
		t, ok := lookupTable(reg, c)
		if !ok {
			return notFound(c, "Unknown table")
		}

		if err := t.remove(middleware.GetUserID(c), c.Params("id")); err != nil {
			return tableError(c, err, "delete row")
		}
		return success(c, fiber.Map{"message": "Row deleted"})
	}
}
