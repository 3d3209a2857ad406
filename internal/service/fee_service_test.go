package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
)

type mockFeeRepo struct {
	fees   map[string]*models.Fee
	nextID int
}

func newMockFeeRepo() *mockFeeRepo {
	return &mockFeeRepo{fees: map[string]*models.Fee{}}
}

func (m *mockFeeRepo) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error) {
	out := []models.Fee{}
	for _, fee := range m.fees {
		if filter.StudentID != "" && fee.StudentID != filter.StudentID {
			continue
		}
		if filter.ParentID != "" && (fee.ParentID == nil || *fee.ParentID != filter.ParentID) {
			continue
		}
		out = append(out, *fee)
	}
	return out, len(out), nil
}

func (m *mockFeeRepo) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	if fee, ok := m.fees[id]; ok {
		copied := *fee
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	m.nextID++
	fee.ID = "f" + string(rune('0'+m.nextID))
	m.fees[fee.ID] = fee
	return nil
}

func (m *mockFeeRepo) Update(ctx context.Context, fee *models.Fee) error {
	m.fees[fee.ID] = fee
	return nil
}

func (m *mockFeeRepo) Delete(ctx context.Context, id string) error {
	delete(m.fees, id)
	return nil
}

func TestFeeCreateComputesOutstanding(t *testing.T) {
	svc := NewFeeService(newMockFeeRepo(), validator.New(), zap.NewNop())

	fee, err := svc.Create(context.Background(), access.Resolve(models.RoleAdmin), CreateFeeRequest{
		StudentID:   "s1",
		StudentName: "Ada Student",
		FeeType:     "tuition",
		AmountDue:   450,
		AmountPaid:  300,
		Status:      models.FeeStatusPartial,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, fee.OutstandingAmount)
}

func TestFeeRecordPaymentRecomputesOutstanding(t *testing.T) {
	repo := newMockFeeRepo()
	svc := NewFeeService(repo, validator.New(), zap.NewNop())
	caps := access.Resolve(models.RoleAdmin)

	fee, err := svc.Create(context.Background(), caps, CreateFeeRequest{
		StudentID: "s1", StudentName: "Ada Student", FeeType: "tuition",
		AmountDue: 450, AmountPaid: 300, Status: models.FeeStatusPartial,
	})
	require.NoError(t, err)

	paid, err := svc.RecordPayment(context.Background(), caps, fee.ID, RecordPaymentRequest{Amount: 150})
	require.NoError(t, err)
	assert.Equal(t, 450.0, paid.AmountPaid)
	assert.Equal(t, 0.0, paid.OutstandingAmount)
}

func TestFeeUpdateRecomputesOutstanding(t *testing.T) {
	repo := newMockFeeRepo()
	svc := NewFeeService(repo, validator.New(), zap.NewNop())
	caps := access.Resolve(models.RoleAdmin)

	fee, err := svc.Create(context.Background(), caps, CreateFeeRequest{
		StudentID: "s1", StudentName: "Ada Student", FeeType: "tuition",
		AmountDue: 100, AmountPaid: 0, Status: models.FeeStatusPending,
	})
	require.NoError(t, err)

	due := 200.0
	updated, err := svc.Update(context.Background(), caps, fee.ID, models.FeePatch{AmountDue: &due})
	require.NoError(t, err)
	assert.Equal(t, 200.0, updated.OutstandingAmount)
}

func TestFeeStatusNotDerivedFromAmounts(t *testing.T) {
	repo := newMockFeeRepo()
	svc := NewFeeService(repo, validator.New(), zap.NewNop())
	caps := access.Resolve(models.RoleAdmin)

	fee, err := svc.Create(context.Background(), caps, CreateFeeRequest{
		StudentID: "s1", StudentName: "Ada Student", FeeType: "tuition",
		AmountDue: 100, AmountPaid: 0, Status: models.FeeStatusPending,
	})
	require.NoError(t, err)

	paid, err := svc.RecordPayment(context.Background(), caps, fee.ID, RecordPaymentRequest{Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, 0.0, paid.OutstandingAmount)
	assert.Equal(t, models.FeeStatusPending, paid.Status)
}

func TestFeeListScopedByRole(t *testing.T) {
	repo := newMockFeeRepo()
	svc := NewFeeService(repo, validator.New(), zap.NewNop())
	caps := access.Resolve(models.RoleAdmin)

	parentID := "p1"
	_, err := svc.Create(context.Background(), caps, CreateFeeRequest{
		StudentID: "s1", StudentName: "Ada Student", ParentID: &parentID, FeeType: "tuition",
		AmountDue: 100, Status: models.FeeStatusPending,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), caps, CreateFeeRequest{
		StudentID: "s2", StudentName: "Ben Student", FeeType: "tuition",
		AmountDue: 100, Status: models.FeeStatusPending,
	})
	require.NoError(t, err)

	own, total, err := svc.List(context.Background(), access.Resolve(models.RoleStudent), "s1", models.FeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, "s1", own[0].StudentID)

	children, total, err := svc.List(context.Background(), access.Resolve(models.RoleParent), "p1", models.FeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, children, 1)
	assert.Equal(t, "s1", children[0].StudentID)

	_, _, err = svc.List(context.Background(), access.Resolve(models.RoleTeacher), "t1", models.FeeFilter{})
	require.Error(t, err)
}

func TestFeeCreateRequiresAdmin(t *testing.T) {
	svc := NewFeeService(newMockFeeRepo(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), access.Resolve(models.RoleTeacher), CreateFeeRequest{
		StudentID: "s1", StudentName: "Ada Student", FeeType: "tuition",
		AmountDue: 100, Status: models.FeeStatusPending,
	})
	require.Error(t, err)
}
