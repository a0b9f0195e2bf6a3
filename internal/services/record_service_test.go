package services

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/internal/core"

	"github.com/google/uuid"
)

type fakeRepo struct {
	created  []core.PricedRecord
	failSave error
	closed   bool
}

func (f *fakeRepo) CreateRecord(_ context.Context, rec core.PricedRecord) (uuid.UUID, error) {
	if f.failSave != nil {
		return uuid.Nil, f.failSave
	}
	f.created = append(f.created, rec)
	return uuid.New(), nil
}

func (f *fakeRepo) ReadAllRecords(context.Context) ([]core.Row, error) {
	rows := make([]core.Row, len(f.created))
	for i, rec := range f.created {
		rows[i] = core.Row{core.ColumnAction: rec.ActionName}
	}
	return rows, nil
}

func (f *fakeRepo) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	published []uuid.UUID
	fail      error
	closeErr  error
}

func (f *fakePublisher) PublishRecordSync(_ context.Context, id uuid.UUID) error {
	if f.fail != nil {
		return f.fail
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakePublisher) Close() error { return f.closeErr }

var sample = core.PricedRecord{Date: core.NewDate(2025, 6, 15), User: "alice", ActionName: "שתל", Quantity: 1, UnitPrice: 500, Total: 500}

func TestRecordService_CreateRecord(t *testing.T) {
	tests := []struct {
		name          string
		repo          *fakeRepo
		pub           *fakePublisher
		wantErr       bool
		wantPublished int
	}{
		{name: "saves and publishes", repo: &fakeRepo{}, pub: &fakePublisher{}, wantPublished: 1},
		{name: "publish failure is not fatal", repo: &fakeRepo{}, pub: &fakePublisher{fail: errors.New("broker down")}},
		{name: "save failure", repo: &fakeRepo{failSave: errors.New("disk full")}, pub: &fakePublisher{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRecordService(tt.repo, tt.pub)
			id, err := s.CreateRecord(context.Background(), sample)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && id == uuid.Nil {
				t.Fatal("expected a record id")
			}
			if len(tt.pub.published) != tt.wantPublished {
				t.Fatalf("published %d messages, want %d", len(tt.pub.published), tt.wantPublished)
			}
		})
	}
}

func TestRecordService_WithoutPublisher(t *testing.T) {
	repo := &fakeRepo{}
	s := NewRecordService(repo, nil)
	if _, err := s.CreateRecord(context.Background(), sample); err != nil {
		t.Fatalf("create: %v", err)
	}
	rows, err := s.ReadAllRecords(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows = %v, err = %v", rows, err)
	}
}

func TestRecordService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		if err := (&RecordService{}).Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("joins errors", func(t *testing.T) {
		repo := &fakeRepo{}
		boom := errors.New("boom")
		err := NewRecordService(repo, &fakePublisher{closeErr: boom}).Close()
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped close error, got %v", err)
		}
		if !repo.closed {
			t.Fatal("storage should be closed")
		}
	})
}
