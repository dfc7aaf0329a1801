/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package mocks provides testify mocks of the host collaborators
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tochemey/nodehost/extension"
	"github.com/tochemey/nodehost/host"
)

// testingT is the test handle the mocks assert their expectations on
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func errorOf(ret mock.Arguments, index int, args ...any) error {
	switch fn := ret.Get(index).(type) {
	case func() error:
		return fn()
	case func(context.Context) error:
		return fn(args[0].(context.Context))
	case func(context.Context, extension.Provider) error:
		return fn(args[0].(context.Context), args[1].(extension.Provider))
	case func(context.Context, *host.Host) error:
		return fn(args[0].(context.Context), args[1].(*host.Host))
	default:
		return ret.Error(index)
	}
}

// MessageCenter is a mock type for the host.MessageCenter type
type MessageCenter struct {
	mock.Mock
}

// MessageCenterExpecter sets the expectations of a MessageCenter
type MessageCenterExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.MessageCenter = (*MessageCenter)(nil)

// NewMessageCenter creates a MessageCenter asserting its expectations when the test ends
func NewMessageCenter(t testingT) *MessageCenter {
	m := new(MessageCenter)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *MessageCenter) EXPECT() *MessageCenterExpecter {
	return &MessageCenterExpecter{mock: &_m.Mock}
}

// BlockApplicationMessages provides a mock function
func (_m *MessageCenter) BlockApplicationMessages() {
	_m.Called()
}

// BlockApplicationMessages is a helper method to define mock.On call
func (_e *MessageCenterExpecter) BlockApplicationMessages() *mock.Call {
	return _e.mock.On("BlockApplicationMessages")
}

// StopAcceptingClientMessages provides a mock function
func (_m *MessageCenter) StopAcceptingClientMessages(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// StopAcceptingClientMessages is a helper method to define mock.On call
func (_e *MessageCenterExpecter) StopAcceptingClientMessages(ctx any) *mock.Call {
	return _e.mock.On("StopAcceptingClientMessages", ctx)
}

// Stop provides a mock function
func (_m *MessageCenter) Stop(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// Stop is a helper method to define mock.On call
func (_e *MessageCenterExpecter) Stop(ctx any) *mock.Call {
	return _e.mock.On("Stop", ctx)
}

// Gateway provides a mock function
func (_m *MessageCenter) Gateway() host.Gateway {
	ret := _m.Called()
	if fn, ok := ret.Get(0).(func() host.Gateway); ok {
		return fn()
	}
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(host.Gateway)
}

// Gateway is a helper method to define mock.On call
func (_e *MessageCenterExpecter) Gateway() *mock.Call {
	return _e.mock.On("Gateway")
}

// OutboundQueueLen provides a mock function
func (_m *MessageCenter) OutboundQueueLen() int {
	ret := _m.Called()
	if fn, ok := ret.Get(0).(func() int); ok {
		return fn()
	}
	return ret.Int(0)
}

// OutboundQueueLen is a helper method to define mock.On call
func (_e *MessageCenterExpecter) OutboundQueueLen() *mock.Call {
	return _e.mock.On("OutboundQueueLen")
}

// Gateway is a mock type for the host.Gateway type
type Gateway struct {
	mock.Mock
}

// GatewayExpecter sets the expectations of a Gateway
type GatewayExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway asserting its expectations when the test ends
func NewGateway(t testingT) *Gateway {
	m := new(Gateway)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *Gateway) EXPECT() *GatewayExpecter {
	return &GatewayExpecter{mock: &_m.Mock}
}

// SendStopSendMessages provides a mock function
func (_m *Gateway) SendStopSendMessages(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// SendStopSendMessages is a helper method to define mock.On call
func (_e *GatewayExpecter) SendStopSendMessages(ctx any) *mock.Call {
	return _e.mock.On("SendStopSendMessages", ctx)
}

// Catalog is a mock type for the host.Catalog type
type Catalog struct {
	mock.Mock
}

// CatalogExpecter sets the expectations of a Catalog
type CatalogExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.Catalog = (*Catalog)(nil)

// NewCatalog creates a Catalog asserting its expectations when the test ends
func NewCatalog(t testingT) *Catalog {
	m := new(Catalog)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *Catalog) EXPECT() *CatalogExpecter {
	return &CatalogExpecter{mock: &_m.Mock}
}

// DeactivateAllActivations provides a mock function
func (_m *Catalog) DeactivateAllActivations(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// DeactivateAllActivations is a helper method to define mock.On call
func (_e *CatalogExpecter) DeactivateAllActivations(ctx any) *mock.Call {
	return _e.mock.On("DeactivateAllActivations", ctx)
}

// Statistics is a mock type for the host.Statistics type
type Statistics struct {
	mock.Mock
}

// StatisticsExpecter sets the expectations of a Statistics
type StatisticsExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.Statistics = (*Statistics)(nil)

// NewStatistics creates a Statistics asserting its expectations when the test ends
func NewStatistics(t testingT) *Statistics {
	m := new(Statistics)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *Statistics) EXPECT() *StatisticsExpecter {
	return &StatisticsExpecter{mock: &_m.Mock}
}

// Start provides a mock function
func (_m *Statistics) Start() error {
	ret := _m.Called()
	return errorOf(ret, 0)
}

// Start is a helper method to define mock.On call
func (_e *StatisticsExpecter) Start() *mock.Call {
	return _e.mock.On("Start")
}

// Stop provides a mock function
func (_m *Statistics) Stop() {
	_m.Called()
}

// Stop is a helper method to define mock.On call
func (_e *StatisticsExpecter) Stop() *mock.Call {
	return _e.mock.On("Stop")
}

// Watchdog is a mock type for the host.Watchdog type
type Watchdog struct {
	mock.Mock
}

// WatchdogExpecter sets the expectations of a Watchdog
type WatchdogExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.Watchdog = (*Watchdog)(nil)

// NewWatchdog creates a Watchdog asserting its expectations when the test ends
func NewWatchdog(t testingT) *Watchdog {
	m := new(Watchdog)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *Watchdog) EXPECT() *WatchdogExpecter {
	return &WatchdogExpecter{mock: &_m.Mock}
}

// Start provides a mock function
func (_m *Watchdog) Start() {
	_m.Called()
}

// Start is a helper method to define mock.On call
func (_e *WatchdogExpecter) Start() *mock.Call {
	return _e.mock.On("Start")
}

// Stop provides a mock function
func (_m *Watchdog) Stop() {
	_m.Called()
}

// Stop is a helper method to define mock.On call
func (_e *WatchdogExpecter) Stop() *mock.Call {
	return _e.mock.On("Stop")
}

// ReminderService is a mock type for the host.ReminderService type
type ReminderService struct {
	mock.Mock
}

// ReminderServiceExpecter sets the expectations of a ReminderService
type ReminderServiceExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.ReminderService = (*ReminderService)(nil)

// NewReminderService creates a ReminderService asserting its expectations when the test ends
func NewReminderService(t testingT) *ReminderService {
	m := new(ReminderService)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *ReminderService) EXPECT() *ReminderServiceExpecter {
	return &ReminderServiceExpecter{mock: &_m.Mock}
}

// Start provides a mock function
func (_m *ReminderService) Start(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// Start is a helper method to define mock.On call
func (_e *ReminderServiceExpecter) Start(ctx any) *mock.Call {
	return _e.mock.On("Start", ctx)
}

// Stop provides a mock function
func (_m *ReminderService) Stop(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// Stop is a helper method to define mock.On call
func (_e *ReminderServiceExpecter) Stop(ctx any) *mock.Call {
	return _e.mock.On("Stop", ctx)
}

// Service is a mock type for the extension.Service type
type Service struct {
	mock.Mock
}

// ServiceExpecter sets the expectations of a Service
type ServiceExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ extension.Service = (*Service)(nil)

// NewService creates a Service asserting its expectations when the test ends
func NewService(t testingT) *Service {
	m := new(Service)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *Service) EXPECT() *ServiceExpecter {
	return &ServiceExpecter{mock: &_m.Mock}
}

// ID provides a mock function
func (_m *Service) ID() string {
	ret := _m.Called()
	if fn, ok := ret.Get(0).(func() string); ok {
		return fn()
	}
	return ret.String(0)
}

// ID is a helper method to define mock.On call
func (_e *ServiceExpecter) ID() *mock.Call {
	return _e.mock.On("ID")
}

// Init provides a mock function
func (_m *Service) Init(ctx context.Context, provider extension.Provider) error {
	ret := _m.Called(ctx, provider)
	return errorOf(ret, 0, ctx, provider)
}

// Init is a helper method to define mock.On call
func (_e *ServiceExpecter) Init(ctx, provider any) *mock.Call {
	return _e.mock.On("Init", ctx, provider)
}

// Start provides a mock function
func (_m *Service) Start(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// Start is a helper method to define mock.On call
func (_e *ServiceExpecter) Start(ctx any) *mock.Call {
	return _e.mock.On("Start", ctx)
}

// Stop provides a mock function
func (_m *Service) Stop(ctx context.Context) error {
	ret := _m.Called(ctx)
	return errorOf(ret, 0, ctx)
}

// Stop is a helper method to define mock.On call
func (_e *ServiceExpecter) Stop(ctx any) *mock.Call {
	return _e.mock.On("Stop", ctx)
}

// ShutdownHook is a mock type for the host.ShutdownHook type
type ShutdownHook struct {
	mock.Mock
}

// ShutdownHookExpecter sets the expectations of a ShutdownHook
type ShutdownHookExpecter struct {
	mock *mock.Mock
}

// enforce compilation error
var _ host.ShutdownHook = (*ShutdownHook)(nil)

// NewShutdownHook creates a ShutdownHook asserting its expectations when the test ends
func NewShutdownHook(t testingT) *ShutdownHook {
	m := new(ShutdownHook)
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter of the mock
func (_m *ShutdownHook) EXPECT() *ShutdownHookExpecter {
	return &ShutdownHookExpecter{mock: &_m.Mock}
}

// Execute provides a mock function
func (_m *ShutdownHook) Execute(ctx context.Context, h *host.Host) error {
	ret := _m.Called(ctx, h)
	return errorOf(ret, 0, ctx, h)
}

// Execute is a helper method to define mock.On call
func (_e *ShutdownHookExpecter) Execute(ctx, h any) *mock.Call {
	return _e.mock.On("Execute", ctx, h)
}

// Recovery provides a mock function
func (_m *ShutdownHook) Recovery() *host.ShutdownHookRecovery {
	ret := _m.Called()
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(*host.ShutdownHookRecovery)
}

// Recovery is a helper method to define mock.On call
func (_e *ShutdownHookExpecter) Recovery() *mock.Call {
	return _e.mock.On("Recovery")
}
