package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockToolRunner is a mock implementation of ToolRunner for testing.
type MockToolRunner struct {
	mock.Mock
}

var _ ToolRunner = &MockToolRunner{} // Compile-time check

// Run implements the ToolRunner interface.
func (m *MockToolRunner) Run(ctx context.Context, inv ToolInvocation) ([]byte, error) {
	ret := m.Called(ctx, inv)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// Available implements the ToolRunner interface.
func (m *MockToolRunner) Available(command string) bool {
	ret := m.Called(command)
	return ret.Bool(0)
}

// MockPrompter is a mock implementation of Prompter for testing.
type MockPrompter struct {
	mock.Mock
}

var _ Prompter = &MockPrompter{} // Compile-time check

// Info implements the Prompter interface.
func (m *MockPrompter) Info(msg string) {
	m.Called(msg)
}

// Confirm implements the Prompter interface.
func (m *MockPrompter) Confirm(ctx context.Context, msg string) (bool, error) {
	ret := m.Called(ctx, msg)
	return ret.Bool(0), ret.Error(1)
}

// PickMany implements the Prompter interface.
func (m *MockPrompter) PickMany(ctx context.Context, title string, items []PickItem) ([]PickItem, error) {
	ret := m.Called(ctx, title, items)
	picked, _ := ret.Get(0).([]PickItem)
	return picked, ret.Error(1)
}
