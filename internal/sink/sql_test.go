package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purin2/sql-practice-tutor/internal/testutil"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

var (
	question = Dialect{Name: "test", Placeholder: PlaceholderQuestion, IntegerType: "INTEGER"}
	dollar   = Dialect{Name: "test", Placeholder: PlaceholderDollar, IntegerType: "BIGINT"}
)

func smallDocument() *core.Document {
	return &core.Document{Tables: []core.Table{
		{
			Name: "users",
			Columns: []core.Column{
				{Name: "user_id", Type: core.TypeString, IsPrimaryKey: true},
				{Name: "registered_at", Type: core.TypeDateTime},
			},
			Relations: []core.Relation{},
			SampleData: []core.Row{
				{{Name: "user_id", Value: "U00001"}, {Name: "registered_at", Value: "2024-01-01 00:00:00"}},
			},
		},
		{
			Name: "payments",
			Columns: []core.Column{
				{Name: "payment_id", Type: core.TypeString, IsPrimaryKey: true},
				{Name: "user_id", Type: core.TypeString, IsForeignKey: true},
				{Name: "amount", Type: core.TypeInteger},
			},
			Relations: []core.Relation{{FromColumn: "user_id", ToTable: "users", ToColumn: "user_id", Type: core.ManyToOne}},
			SampleData: []core.Row{
				{{Name: "payment_id", Value: "P000001"}, {Name: "user_id", Value: "U00001"}, {Name: "amount", Value: int64(980)}},
				{{Name: "payment_id", Value: "P000002"}, {Name: "user_id", Value: "U00001"}, {Name: "amount", Value: int64(100)}},
			},
		},
	}}
}

func TestDialect_Statements(t *testing.T) {
	doc := smallDocument()
	payments := &doc.Tables[1]

	assert.Equal(t, `DROP TABLE IF EXISTS "payments"`, question.DropTable("payments"))
	assert.Equal(t,
		`CREATE TABLE "payments" ("payment_id" TEXT PRIMARY KEY, "user_id" TEXT REFERENCES "users" ("user_id"), "amount" BIGINT)`,
		dollar.CreateTable(payments))
	assert.Equal(t,
		`INSERT INTO "payments" ("payment_id", "user_id", "amount") VALUES ($1, $2, $3)`,
		dollar.InsertRow(payments))
	assert.Equal(t,
		`INSERT INTO "payments" ("payment_id", "user_id", "amount") VALUES (?, ?, ?)`,
		question.InsertRow(payments))
}

func TestDialect_ColumnType(t *testing.T) {
	assert.Equal(t, "TEXT", dollar.ColumnType(core.TypeString))
	assert.Equal(t, "TEXT", dollar.ColumnType(core.TypeDateTime))
	assert.Equal(t, "BIGINT", dollar.ColumnType(core.TypeInteger))
	assert.Equal(t, "INTEGER", question.ColumnType(core.TypeInteger))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"month"`, QuoteIdent("month"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}

func TestLoad(t *testing.T) {
	doc := smallDocument()
	users, payments := &doc.Tables[0], &doc.Tables[1]

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   string
	}{
		{
			name: "replaces tables in one transaction",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(dollar.DropTable("payments")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(dollar.DropTable("users")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(dollar.CreateTable(users)).WillReturnResult(sqlmock.NewResult(0, 0))
				userInsert := mock.ExpectPrepare(dollar.InsertRow(users))
				userInsert.ExpectExec().WithArgs("U00001", "2024-01-01 00:00:00").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(dollar.CreateTable(payments)).WillReturnResult(sqlmock.NewResult(0, 0))
				paymentInsert := mock.ExpectPrepare(dollar.InsertRow(payments))
				paymentInsert.ExpectExec().WithArgs("P000001", "U00001", int64(980)).WillReturnResult(sqlmock.NewResult(0, 1))
				paymentInsert.ExpectExec().WithArgs("P000002", "U00001", int64(100)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back on insert failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(dollar.DropTable("payments")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(dollar.DropTable("users")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(dollar.CreateTable(users)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectPrepare(dollar.InsertRow(users)).
					ExpectExec().WillReturnError(errors.New("duplicate key"))
				mock.ExpectRollback()
			},
			wantErr: "failed to insert row 0 into users: duplicate key",
		},
		{
			name: "rolls back on drop failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(dollar.DropTable("payments")).WillReturnError(errors.New("permission denied"))
				mock.ExpectRollback()
			},
			wantErr: "failed to drop table payments",
		},
		{
			name: "begin failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("connection reset"))
			},
			wantErr: "failed to begin transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)

			err = Load(context.Background(), db, dollar, doc, testutil.NewTestLogger(t))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
