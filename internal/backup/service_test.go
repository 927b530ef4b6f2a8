package backup_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ebill/internal/backup"
	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

var created = time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

func fixtures() ([]*user.User, []*bill.Bill) {
	users := []*user.User{
		{ID: uuid.New(), Username: "admin", PasswordHash: "$2a$hash", Role: user.RoleAdmin, CreatedAt: created},
		{ID: uuid.New(), Username: "clerk", PasswordHash: "$2a$other", Role: user.RoleUser, CreatedAt: created},
	}
	bills := []*bill.Bill{
		{
			ID: uuid.New(), Number: "BILL10001", CustomerName: "Asha Rao", CustomerType: tariff.Domestic,
			Units: 100, EnergyCharge: 150, FixedCharge: 50, GST: 27, Total: 227,
			Status: bill.StatusPaid, CreatedAt: created,
		},
	}

	return users, bills
}

func snapshotJSON(t *testing.T) []byte {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := backup.NewMockRepository(ctrl)

	users, bills := fixtures()
	repo.EXPECT().ExportAll(gomock.Any()).Return(users, bills, nil)

	var buf bytes.Buffer
	require.NoError(t, backup.NewService(repo).Backup(context.Background(), &buf))

	return buf.Bytes()
}

func TestService_Backup(t *testing.T) {
	data := snapshotJSON(t)

	var snap backup.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	assert.Equal(t, backup.Version, snap.Version)
	assert.False(t, snap.CreatedAt.IsZero())
	require.Len(t, snap.Users, 2)
	require.Len(t, snap.Bills, 1)
	assert.Equal(t, "$2a$hash", snap.Users[0].PasswordHash)
	assert.Equal(t, "BILL10001", snap.Bills[0].Number)
	assert.Contains(t, string(data), `"bill_no": "BILL10001"`)
}

func TestService_Backup_ExportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := backup.NewMockRepository(ctrl)
	repo.EXPECT().ExportAll(gomock.Any()).Return(nil, nil, errors.New("db down"))

	err := backup.NewService(repo).Backup(context.Background(), &bytes.Buffer{})
	assert.EqualError(t, err, "exporting data: db down")
}

func TestService_Restore(t *testing.T) {
	data := snapshotJSON(t)
	users, bills := fixtures()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := backup.NewMockRepository(ctrl)
	rtx := backup.NewMockRestoreTx(ctrl)

	gomock.InOrder(
		repo.EXPECT().BeginRestore(gomock.Any()).Return(rtx, nil),
		rtx.EXPECT().DeleteAll(gomock.Any()).Return(nil),
		rtx.EXPECT().
			InsertUsers(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, got []*user.User) error {
				require.Len(t, got, 2)
				assert.Equal(t, users[0].Username, got[0].Username)
				assert.Equal(t, user.RoleAdmin, got[0].Role)

				return nil
			}),
		rtx.EXPECT().
			InsertBills(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, got []*bill.Bill) error {
				require.Len(t, got, 1)
				assert.Equal(t, bills[0].Number, got[0].Number)
				assert.Equal(t, bill.StatusPaid, got[0].Status)
				assert.True(t, created.Equal(got[0].CreatedAt))

				return nil
			}),
		rtx.EXPECT().Commit().Return(nil),
	)
	rtx.EXPECT().Rollback().Return(nil)

	stats, err := backup.NewService(repo).Restore(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, &backup.RestoreStats{Users: 2, Bills: 1}, stats)
}

func TestService_Restore_RollsBackOnInsertError(t *testing.T) {
	data := snapshotJSON(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := backup.NewMockRepository(ctrl)
	rtx := backup.NewMockRestoreTx(ctrl)

	repo.EXPECT().BeginRestore(gomock.Any()).Return(rtx, nil)
	rtx.EXPECT().DeleteAll(gomock.Any()).Return(nil)
	rtx.EXPECT().InsertUsers(gomock.Any(), gomock.Any()).Return(nil)
	rtx.EXPECT().InsertBills(gomock.Any(), gomock.Any()).Return(errors.New("constraint"))
	rtx.EXPECT().Rollback().Return(nil)

	_, err := backup.NewService(repo).Restore(context.Background(), bytes.NewReader(data))
	assert.EqualError(t, err, "restoring bills: constraint")
}

func TestService_Restore_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "NotJSON",
			input:   "not json",
			wantErr: backup.ErrInvalidSnapshot,
		},
		{
			name:    "UnknownField",
			input:   `{"version":1,"extra":true}`,
			wantErr: backup.ErrInvalidSnapshot,
		},
		{
			name:    "WrongVersion",
			input:   `{"version":2,"users":[],"bills":[]}`,
			wantErr: backup.ErrUnsupportedVersion,
		},
		{
			name:    "NoAdmin",
			input:   `{"version":1,"users":[{"username":"clerk","password_hash":"x","role":"user"}],"bills":[]}`,
			wantErr: backup.ErrNoAdmin,
		},
		{
			name:    "DuplicateUsername",
			input:   `{"version":1,"users":[{"username":"a","password_hash":"x","role":"admin"},{"username":"a","password_hash":"y","role":"user"}]}`,
			wantErr: backup.ErrInvalidSnapshot,
		},
		{
			name: "DuplicateBillNumber",
			input: `{"version":1,"users":[{"username":"a","password_hash":"x","role":"admin"}],` +
				`"bills":[{"bill_no":"BILL1","customer_name":"A","customer_type":"Domestic","fixed_charge":50,"total":50,"status":"Paid"},` +
				`{"bill_no":"BILL1","customer_name":"B","customer_type":"Domestic","fixed_charge":50,"total":50,"status":"Paid"}]}`,
			wantErr: backup.ErrInvalidSnapshot,
		},
		{
			name: "BadStatus",
			input: `{"version":1,"users":[{"username":"a","password_hash":"x","role":"admin"}],` +
				`"bills":[{"bill_no":"BILL1","customer_name":"A","status":"Overdue"}]}`,
			wantErr: bill.ErrInvalidStatus,
		},
		{
			name: "OverCeiling",
			input: `{"version":1,"users":[{"username":"a","password_hash":"x","role":"admin"}],` +
				`"bills":[{"bill_no":"BILL1","customer_name":"A","customer_type":"Domestic","units":20000,"status":"Paid"}]}`,
			wantErr: tariff.ErrUsageCeilingExceeded,
		},
		{
			name: "TotalDoesNotMatchUnits",
			input: `{"version":1,"users":[{"username":"a","password_hash":"x","role":"admin"}],` +
				`"bills":[{"bill_no":"BILL1","customer_name":"A","customer_type":"Domestic","units":100,` +
				`"energy_charge":150,"fixed_charge":50,"gst":27,"total":1,"status":"Paid"}]}`,
			wantErr: backup.ErrInvalidSnapshot,
		},
		{
			name: "NegativeUnits",
			input: `{"version":1,"users":[{"username":"a","password_hash":"x","role":"admin"}],` +
				`"bills":[{"bill_no":"BILL1","customer_name":"A","customer_type":"Domestic","units":-3,"fixed_charge":50,"total":50,"status":"Paid"}]}`,
			wantErr: backup.ErrInvalidSnapshot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := backup.NewMockRepository(ctrl)

			_, err := backup.NewService(repo).Restore(context.Background(), strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
