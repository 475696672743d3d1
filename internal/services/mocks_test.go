package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"nominacli/internal/exporter"
	"nominacli/pkg/contracts/domain"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, units []domain.InputUnit) (domain.RunResult, error) {
	args := m.Called(ctx, units)
	return args.Get(0).(domain.RunResult), args.Error(1)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(w io.Writer, format exporter.Format, records []domain.EmployeeRecord, report domain.StatisticsReport) error {
	args := m.Called(w, format, records, report)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Names() []string {
	args := m.Called()
	return args.Get(0).([]string)
}
