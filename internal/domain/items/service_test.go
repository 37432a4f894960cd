package items

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateItem(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) GetItemByID(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) GetItemByIDForUpdate(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*Item, error) {
	args := m.Called(ctx, tx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) UpdateItem(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, status ItemStatus) error {
	args := m.Called(ctx, tx, itemID, status)
	return args.Error(0)
}

func (m *MockRepository) ListItems(ctx context.Context, filter ListFilter) ([]*Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Item), args.Error(1)
}

func (m *MockRepository) CountItems(ctx context.Context, filter ListFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListActiveItemsPastExpiry(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func TestService_CreateItem(t *testing.T) {
	ownerID := uuid.New()

	validCmd := func() CreateItemCommand {
		return CreateItemCommand{
			OwnerID:      ownerID,
			Title:        "Old Fridge",
			Description:  "Still cold",
			Category:     "Appliances",
			OfferType:    OfferTypePay,
			DurationDays: 7,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*CreateItemCommand)
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name:   "successfully creates listing",
			mutate: func(cmd *CreateItemCommand) {},
			setupMock: func(repo *MockRepository) {
				repo.On("CreateItem", mock.Anything, mock.AnythingOfType("*items.Item")).Return(nil)
			},
		},
		{
			name:      "fails without title",
			mutate:    func(cmd *CreateItemCommand) { cmd.Title = "" },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidTitle,
		},
		{
			name:      "fails with unknown category",
			mutate:    func(cmd *CreateItemCommand) { cmd.Category = "Spaceships" },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidCategory,
		},
		{
			name:      "fails with unknown offer type",
			mutate:    func(cmd *CreateItemCommand) { cmd.OfferType = "barter" },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidOfferType,
		},
		{
			name:      "fails with unsupported duration",
			mutate:    func(cmd *CreateItemCommand) { cmd.DurationDays = 3 },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			service := NewService(nil, repo, nil)
			cmd := validCmd()
			tt.mutate(&cmd)

			item, err := service.CreateItem(context.Background(), cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
			} else {
				assert.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, item.ID)
				assert.Equal(t, ItemStatusActive, item.Status)
				assert.Equal(t, item.CreatedAt.AddDate(0, 0, cmd.DurationDays), item.ExpiresAt)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateItem(t *testing.T) {
	itemID := uuid.New()
	ownerID := uuid.New()
	otherUserID := uuid.New()

	tests := []struct {
		name      string
		cmd       UpdateItemCommand
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name: "successfully updates listing",
			cmd: UpdateItemCommand{
				ItemID:      itemID,
				UserID:      ownerID,
				Title:       "Updated Title",
				Description: "Updated Description",
			},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(&Item{
					ID:      itemID,
					OwnerID: ownerID,
					Title:   "Old Title",
					Status:  ItemStatusActive,
				}, nil)
				repo.On("UpdateItem", mock.Anything, mock.AnythingOfType("*items.Item")).Return(nil)
			},
		},
		{
			name: "fails when item not found",
			cmd:  UpdateItemCommand{ItemID: itemID, UserID: ownerID},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(nil, errors.New("not found"))
			},
			wantErr: ErrItemNotFound,
		},
		{
			name: "fails when user is not owner",
			cmd:  UpdateItemCommand{ItemID: itemID, UserID: otherUserID},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(&Item{
					ID:      itemID,
					OwnerID: ownerID,
					Status:  ItemStatusActive,
				}, nil)
			},
			wantErr: ErrUnauthorized,
		},
		{
			name: "fails once the listing left active",
			cmd:  UpdateItemCommand{ItemID: itemID, UserID: ownerID, Title: "x"},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(&Item{
					ID:      itemID,
					OwnerID: ownerID,
					Status:  ItemStatusPendingConfirmation,
				}, nil)
			},
			wantErr: ErrListingNotEditable,
		},
		{
			name: "fails with unknown category",
			cmd:  UpdateItemCommand{ItemID: itemID, UserID: ownerID, Category: "Spaceships"},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(&Item{
					ID:      itemID,
					OwnerID: ownerID,
					Status:  ItemStatusActive,
				}, nil)
			},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			service := NewService(nil, repo, nil)
			item, err := service.UpdateItem(context.Background(), tt.cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.cmd.Title, item.Title)
				assert.Equal(t, tt.cmd.Description, item.Description)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_ListItems(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListItems", mock.Anything, ListFilter{
			Status: ItemStatusActive,
			Limit:  20,
			Offset: 0,
		}).Return([]*Item{}, nil)
		repo.On("CountItems", mock.Anything, mock.Anything).Return(int64(0), nil)

		service := NewService(nil, repo, nil)
		result, err := service.ListItems(context.Background(), ListItemsQuery{})

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
		repo.AssertExpectations(t)
	})

	t.Run("caps oversized pages", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListItems", mock.Anything, ListFilter{
			Status: ItemStatusExpired,
			Limit:  20,
			Offset: 40,
		}).Return([]*Item{}, nil)
		repo.On("CountItems", mock.Anything, mock.Anything).Return(int64(120), nil)

		service := NewService(nil, repo, nil)
		result, err := service.ListItems(context.Background(), ListItemsQuery{
			Status:   ItemStatusExpired,
			Page:     3,
			PageSize: 5000,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(120), result.TotalItems)
		repo.AssertExpectations(t)
	})
}

func TestItem_IsExpired(t *testing.T) {
	now := time.Now()
	item := &Item{ExpiresAt: now}

	assert.True(t, item.IsExpired(now))
	assert.True(t, item.IsExpired(now.Add(time.Second)))
	assert.False(t, item.IsExpired(now.Add(-time.Second)))
}

func TestListItemsQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListItemsQuery
		want ListItemsQuery
	}{
		{
			name: "zero query gets browsing defaults",
			in:   ListItemsQuery{},
			want: ListItemsQuery{Status: ItemStatusActive, Page: 1, PageSize: 20},
		},
		{
			name: "explicit defaults pass through unchanged",
			in:   ListItemsQuery{Status: ItemStatusActive, Page: 1, PageSize: 20},
			want: ListItemsQuery{Status: ItemStatusActive, Page: 1, PageSize: 20},
		},
		{
			name: "oversized page size collapses to the default",
			in:   ListItemsQuery{Page: 3, PageSize: 500},
			want: ListItemsQuery{Status: ItemStatusActive, Page: 3, PageSize: 20},
		},
		{
			name: "negative page becomes page one",
			in:   ListItemsQuery{Page: -4, PageSize: 50},
			want: ListItemsQuery{Status: ItemStatusActive, Page: 1, PageSize: 50},
		},
		{
			name: "status filter is preserved",
			in:   ListItemsQuery{Status: ItemStatusExpired, Page: 2, PageSize: 10},
			want: ListItemsQuery{Status: ItemStatusExpired, Page: 2, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}
