package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendVerificationMail(email, name, code, link string) error {
	args := m.Called(email, name, code, link)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(email, name, code string) error {
	args := m.Called(email, name, code)
	return args.Error(0)
}

func (m *MockMailManager) SendConfirmationMail(email, name string) error {
	args := m.Called(email, name)
	return args.Error(0)
}

func (m *MockMailManager) SendBookingRequestMail(email, name, propertyTitle string) error {
	args := m.Called(email, name, propertyTitle)
	return args.Error(0)
}
