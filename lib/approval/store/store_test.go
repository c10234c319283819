package approvalstore

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"expense-app-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Suite struct {
	suite.Suite
	store Provider
	mock  sqlmock.Sqlmock
}

func (s *Suite) SetupSuite() {
	var (
		db  *sql.DB
		err error
	)

	db, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(s.T(), err)
	s.store = NewInstance(gormDB)
}

func (s *Suite) AfterTest(_, _ string) {
	require.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func TestApprovalStore(t *testing.T) {
	suite.Run(t, new(Suite))
}

func (s *Suite) TestListPendingPastSla() {
	moment := time.Now()
	pastDue := moment.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "expense_id", "requester_id", "status", "sla_due_at"}).
		AddRow("appr-1", "exp-1", "user-1", "PENDING", pastDue)

	s.mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "approvals" WHERE status = $1 AND sla_due_at IS NOT NULL AND sla_due_at < $2`)).
		WithArgs(string(models.ApprovalStatusPending), moment).
		WillReturnRows(rows)

	list, err := s.store.ListPendingPastSla(moment)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	require.Equal(s.T(), "appr-1", list[0].ID)
	require.Equal(s.T(), models.ApprovalStatusPending, list[0].Status)
}

func (s *Suite) TestGetByIDNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "approvals" WHERE id = $1 ORDER BY "approvals"."id" LIMIT $2`)).
		WithArgs("нет такого", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := s.store.GetByID("нет такого")
	require.NoError(s.T(), err)
	require.Nil(s.T(), rec)
}

func (s *Suite) TestGetByExpenseNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "approvals" WHERE expense_id = $1 ORDER BY "approvals"."id" LIMIT $2`)).
		WithArgs("exp-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := s.store.GetByExpense("exp-1")
	require.NoError(s.T(), err)
	require.Nil(s.T(), rec)
}
