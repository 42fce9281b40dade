package mcp

import (
	"context"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// mockReconciler is a mock implementation of driving.Reconciler.
type mockReconciler struct {
	report         *domain.ReconcileReport
	status         driving.ReconcileStatus
	err            error
	reconciledPath string
}

func (m *mockReconciler) ReconcileAll(_ context.Context) (*domain.ReconcileReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.ReconcileReport{}, nil
}

func (m *mockReconciler) ReconcileNote(_ context.Context, path, _ string) error {
	m.reconciledPath = path
	return m.err
}

func (m *mockReconciler) DeleteNote(_ context.Context, _ string) error {
	return m.err
}

func (m *mockReconciler) Status() driving.ReconcileStatus {
	return m.status
}

// mockNoteStore is a mock implementation of driven.NoteStore.
type mockNoteStore struct {
	notes []domain.Note
	note  *domain.Note
	err   error
}

func (m *mockNoteStore) ListAll(_ context.Context) ([]domain.Note, error) {
	return m.notes, m.err
}

func (m *mockNoteStore) Get(_ context.Context, _ string) (*domain.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.note == nil {
		return nil, domain.ErrNotFound
	}
	return m.note, nil
}

func (m *mockNoteStore) Watch(_ context.Context) (<-chan domain.NoteEvent, error) {
	return nil, m.err
}

func (m *mockNoteStore) Close() error {
	return nil
}
