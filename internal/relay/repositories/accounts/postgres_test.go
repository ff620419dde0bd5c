package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clientpro-app/clientpro/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"employee_id", "name", "activation_key", "status",
		"device_id", "device_info", "activated_at",
	})
}

func TestGetByActivationKey_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE activation_key = \$1`).
		WithArgs("key-1").
		WillReturnRows(accountRows().AddRow("emp_1", "Alice", "key-1", "active", "dev_1", "laptop", int64(100)))

	got, err := repo.GetByActivationKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("GetByActivationKey error: %v", err)
	}
	if got.EmployeeID != "emp_1" || got.Status != "active" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByActivationKey_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE activation_key = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByActivationKey(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByEmployeeID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE employee_id = \$1`).
		WithArgs("emp_1").
		WillReturnRows(accountRows().AddRow("emp_1", "Alice", "key-1", "locked", "dev_1", "", int64(0)))

	got, err := repo.GetByEmployeeID(context.Background(), "emp_1")
	if err != nil {
		t.Fatalf("GetByEmployeeID error: %v", err)
	}
	if got.Active() {
		t.Fatalf("locked account reported active: %+v", got)
	}
}

func TestBindDevice(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE accounts SET device_id = \$2, device_info = \$3, activated_at = \$4\s+WHERE employee_id = \$1`).
		WithArgs("emp_1", "dev_2", "phone", int64(200)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.BindDevice(context.Background(), "emp_1", "dev_2", "phone", 200); err != nil {
		t.Fatalf("BindDevice error: %v", err)
	}
}

func TestBindDevice_UnknownEmployee(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE accounts SET`).
		WithArgs("ghost", "dev_2", "phone", int64(200)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.BindDevice(context.Background(), "ghost", "dev_2", "phone", 200)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE status = \$1 ORDER BY employee_id`).
		WithArgs("active").
		WillReturnRows(accountRows().
			AddRow("emp_1", "Alice", "key-1", "active", "dev_1", "", int64(1)).
			AddRow("emp_2", "Bob", "key-2", "active", "", "", int64(0)))

	got, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive error: %v", err)
	}
	if len(got) != 2 || got[0].EmployeeID != "emp_1" || got[1].Name != "Bob" {
		t.Fatalf("unexpected accounts: %+v", got)
	}
}
