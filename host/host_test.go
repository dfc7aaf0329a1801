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

package host_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/extension"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/inproc"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/membership"
	mocks "github.com/tochemey/nodehost/mocks/host"
	"github.com/tochemey/nodehost/reminder"
	"github.com/tochemey/nodehost/statistics"
	"github.com/tochemey/nodehost/watchdog"
)

// journal records the steps taken by the collaborators of a host
type journal struct {
	mu    sync.Mutex
	steps []string
}

func (j *journal) record(step string) {
	j.mu.Lock()
	j.steps = append(j.steps, step)
	j.mu.Unlock()
}

func (j *journal) Steps() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.steps)
}

func (j *journal) Count(step string) int {
	count := 0
	for _, recorded := range j.Steps() {
		if recorded == step {
			count++
		}
	}
	return count
}

type recordingMessageCenter struct {
	*inproc.MessageCenter
	journal *journal
}

func (m *recordingMessageCenter) BlockApplicationMessages() {
	m.journal.record("messages.block")
	m.MessageCenter.BlockApplicationMessages()
}

func (m *recordingMessageCenter) StopAcceptingClientMessages(ctx context.Context) error {
	m.journal.record("clients.stop")
	return m.MessageCenter.StopAcceptingClientMessages(ctx)
}

func (m *recordingMessageCenter) Stop(ctx context.Context) error {
	m.journal.record("messages.stop")
	return m.MessageCenter.Stop(ctx)
}

type recordingDirectory struct {
	*inproc.Directory
	journal *journal
	stopErr error
}

func (d *recordingDirectory) Stop() error {
	d.journal.record("directory.stop")
	if d.stopErr != nil {
		return d.stopErr
	}
	return d.Directory.Stop()
}

type recordingCatalog struct {
	*inproc.Activations
	journal *journal
}

func (c *recordingCatalog) DeactivateAllActivations(ctx context.Context) error {
	c.journal.record("activations.deactivate")
	return c.Activations.DeactivateAllActivations(ctx)
}

type recordingReminders struct {
	*reminder.LocalService
	journal *journal
}

func (r *recordingReminders) Stop(ctx context.Context) error {
	r.journal.record("reminders.stop")
	return r.LocalService.Stop(ctx)
}

// service is an extension service recording its calls
type service struct {
	id       string
	journal  *journal
	initErr  error
	initWait time.Duration
	provider extension.Provider
}

func (s *service) ID() string {
	return s.id
}

func (s *service) Init(_ context.Context, provider extension.Provider) error {
	s.journal.record(s.id + ".init")
	s.provider = provider
	if s.initWait > 0 {
		time.Sleep(s.initWait)
	}
	return s.initErr
}

func (s *service) Start(context.Context) error {
	s.journal.record(s.id + ".start")
	return nil
}

func (s *service) Stop(context.Context) error {
	s.journal.record(s.id + ".stop")
	return nil
}

// cluster gathers the in-process collaborators of a host under test
type cluster struct {
	journal       *journal
	pool          *workerpool.WorkerPool
	oracle        *membership.LocalOracle
	gateway       *inproc.Gateway
	messageCenter *recordingMessageCenter
	directory     *recordingDirectory
	activations   *recordingCatalog
	publisher     *inproc.LoadPublisher
	reminders     *recordingReminders
}

func newCluster() *cluster {
	j := new(journal)
	pool := workerpool.New()
	logger := log.DiscardLogger
	gateway := inproc.NewGateway(logger, func(_ context.Context, _ string, notice inproc.Notice) error {
		j.record("gateway." + notice.String())
		return nil
	})
	activations := inproc.NewActivations(logger)

	return &cluster{
		journal: j,
		pool:    pool,
		oracle:  membership.NewLocalOracle(logger),
		gateway: gateway,
		messageCenter: &recordingMessageCenter{
			MessageCenter: inproc.NewMessageCenter(logger, inproc.WithGateway(gateway), inproc.WithDrainInterval(time.Millisecond)),
			journal:       j,
		},
		directory:   &recordingDirectory{Directory: inproc.NewDirectory(pool, logger), journal: j},
		activations: &recordingCatalog{Activations: activations, journal: j},
		publisher:   inproc.NewLoadPublisher(host.DefaultAddress, activations, nil, pool, logger),
		reminders:   &recordingReminders{LocalService: reminder.NewLocalService(pool, logger), journal: j},
	}
}

func (c *cluster) options(extra ...host.Option) []host.Option {
	return append([]host.Option{
		host.WithLogger(log.DiscardLogger),
		host.WithWorkerPool(c.pool),
		host.WithStatusOracle(c.oracle),
		host.WithMessageCenter(c.messageCenter),
		host.WithDirectory(c.directory),
		host.WithCatalog(c.activations),
		host.WithLoadPublisher(c.publisher),
		host.WithReminderService(c.reminders),
		host.WithOutboundFlushWindow(50 * time.Millisecond),
		host.WithStopPollInterval(5 * time.Millisecond),
		host.WithInitTimeout(time.Second),
	}, extra...)
}

func TestNew(t *testing.T) {
	t.Run("With a valid configuration", func(t *testing.T) {
		h, err := host.New("host-1", host.WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		assert.Equal(t, host.Created, h.State())
		assert.Equal(t, "host-1", h.Name())
		assert.Equal(t, "host-1", h.HostName())
		assert.Equal(t, host.DefaultAddress, h.Address())
		assert.NotEmpty(t, h.Incarnation())
		assert.NotNil(t, h.Logger())
		assert.NotNil(t, h.Lifecycle())
		assert.Equal(t, "host-1@"+host.DefaultAddress, h.String())
		assert.False(t, h.Terminated().IsCompleted())
	})
	t.Run("With a missing name", func(t *testing.T) {
		_, err := host.New("")
		require.ErrorIs(t, err, gerrors.ErrNameRequired)
	})
	t.Run("With an invalid name", func(t *testing.T) {
		_, err := host.New("-host", host.WithLogger(log.DiscardLogger))
		require.ErrorIs(t, err, gerrors.ErrInvalidHostName)
	})
	t.Run("With an invalid timeout", func(t *testing.T) {
		_, err := host.New("host", host.WithLogger(log.DiscardLogger), host.WithInitTimeout(0))
		require.ErrorIs(t, err, gerrors.ErrInvalidTimeout)
		_, err = host.New("host", host.WithLogger(log.DiscardLogger), host.WithStopTimeout(-time.Second))
		require.ErrorIs(t, err, gerrors.ErrInvalidTimeout)
		_, err = host.New("host", host.WithLogger(log.DiscardLogger), host.WithOutboundFlushWindow(-time.Second))
		require.Error(t, err)
	})
	t.Run("With an invalid address", func(t *testing.T) {
		_, err := host.New("host", host.WithLogger(log.DiscardLogger), host.WithAddress("localhost"))
		require.Error(t, err)
	})
}

func TestHost(t *testing.T) {
	t.Run("With a graceful lifecycle", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		c := newCluster()
		first := &service{id: "first", journal: c.journal}
		second := &service{id: "second", journal: c.journal}
		stats, err := statistics.NewManager("host", statistics.WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		h, err := host.New("host", c.options(
			host.WithServices(first, second),
			host.WithStatistics(stats),
			host.WithWatchdog(watchdog.New(10*time.Millisecond, log.DiscardLogger)),
		)...)
		require.NoError(t, err)
		events := h.Events()

		require.NoError(t, h.StartAsync(context.Background()))
		assert.Equal(t, host.Running, h.State())
		assert.Equal(t, membership.StatusActive, c.oracle.Status(host.DefaultAddress))
		assert.True(t, c.directory.Running())
		assert.True(t, c.reminders.Started())
		assert.EqualValues(t, 1, c.publisher.Published())
		assert.Equal(t, []extension.Service{first, second}, h.Services())
		assert.Equal(t, 2, c.oracle.Listeners())

		// services were initialized with the host as provider
		require.NotNil(t, first.provider)
		other, ok := first.provider.Service("second")
		require.True(t, ok)
		assert.Same(t, second, other)
		serviceComponent, err := first.provider.Component(extension.ComponentID("first"))
		require.NoError(t, err)
		assert.Equal(t, extension.ComponentID("first"), serviceComponent.ID())

		require.NoError(t, c.gateway.Connect("client-1"))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, membership.StatusDead, c.oracle.Status(host.DefaultAddress))
		assert.Zero(t, c.oracle.Listeners())

		_, err = h.Terminated().Await(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{
			"first.init", "second.init",
			"first.start", "second.start",
			"gateway.StopSending",
			"reminders.stop",
			"first.stop", "second.stop",
			"directory.stop",
			"activations.deactivate",
			"clients.stop",
			"gateway.Reconnect",
			"messages.block",
			"messages.stop",
		}, c.journal.Steps())

		var transitions []string
		for message := range events.Iterator() {
			changed := message.Payload().(*host.StatusChanged)
			assert.Equal(t, "host", changed.Host)
			assert.Equal(t, h.Incarnation(), changed.Incarnation)
			transitions = append(transitions, changed.From.String()+"->"+changed.To.String())
		}
		assert.Equal(t, []string{
			"Created->Starting",
			"Starting->Running",
			"Running->ShuttingDown",
			"ShuttingDown->Terminated",
		}, transitions)
		h.RemoveEvents(events)
	})
	t.Run("With concurrent stop requests collapsing into one teardown", func(t *testing.T) {
		c := newCluster()
		statsMock := mocks.NewStatistics(t)
		statsMock.EXPECT().Start().Return(nil).Once()
		statsMock.EXPECT().Stop().Once()
		watchdogMock := mocks.NewWatchdog(t)
		watchdogMock.EXPECT().Start().Once()
		watchdogMock.EXPECT().Stop().Once()

		h, err := host.New("host", c.options(host.WithStatistics(statsMock), host.WithWatchdog(watchdogMock))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))

		const callers = 16
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				switch i % 3 {
				case 0:
					errs[i] = h.Shutdown()
				case 1:
					errs[i] = h.Stop()
				default:
					errs[i] = h.StopAsync(context.Background())
				}
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, 1, c.journal.Count("messages.stop"))
		assert.Equal(t, 1, c.journal.Count("clients.stop"))
		require.True(t, h.Terminated().IsCompleted())

		// later requests return the outcome of the first stop
		require.NoError(t, h.Shutdown())
		require.NoError(t, h.Stop())
	})
	t.Run("With stop requested before the host runs", func(t *testing.T) {
		h, err := host.New("host", host.WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		err = h.StopAsync(context.Background())
		require.ErrorIs(t, err, gerrors.ErrInvalidHostState)
		var stateErr *gerrors.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "Created", stateErr.State)
		require.ErrorIs(t, h.Stop(), gerrors.ErrInvalidHostState)
		assert.Equal(t, host.Created, h.State())
		assert.False(t, h.Terminated().IsCompleted())

		require.ErrorIs(t, h.Abort(context.Background()), gerrors.ErrInvalidHostState)
	})
	t.Run("With a forced stop skipping the graceful steps", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		c := newCluster()
		svc := &service{id: "svc", journal: c.journal}
		h, err := host.New("host", c.options(host.WithServices(svc))...)
		require.NoError(t, err)
		events := h.Events()
		require.NoError(t, h.StartAsync(context.Background()))

		require.NoError(t, h.Stop())
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, []string{"svc.init", "svc.start", "clients.stop", "reminders.stop", "messages.stop"}, c.journal.Steps())
		assert.False(t, c.messageCenter.ApplicationMessagesBlocked())
		assert.True(t, c.gateway.Closed())

		var last *host.StatusChanged
		var stopping bool
		for message := range events.Iterator() {
			last = message.Payload().(*host.StatusChanged)
			stopping = stopping || last.To == host.Stopping
		}
		assert.True(t, stopping)
		assert.Equal(t, host.Terminated, last.To)
	})
	t.Run("With a failing drain engaging the forced teardown", func(t *testing.T) {
		c := newCluster()
		c.directory.stopErr = errors.New("directory partition unavailable")
		h, err := host.New("host", c.options()...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))

		require.NoError(t, h.Shutdown())
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, []string{"reminders.stop", "directory.stop", "clients.stop", "messages.stop"}, c.journal.Steps())
		assert.False(t, c.messageCenter.ApplicationMessagesBlocked())
		assert.True(t, h.Terminated().IsCompleted())
	})
	t.Run("With the outbound queue flushed before the clients are released", func(t *testing.T) {
		c := newCluster()
		h, err := host.New("host", c.options(host.WithOutboundFlushWindow(time.Second))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))

		for i := range 10 {
			require.NoError(t, c.messageCenter.Send(&inproc.Message{Kind: inproc.Application, Target: fmt.Sprintf("peer-%d", i)}))
		}

		require.NoError(t, h.Shutdown())
		assert.EqualValues(t, 10, c.messageCenter.Delivered())
		assert.Zero(t, c.messageCenter.Dropped())
	})
	t.Run("With a start failure leaving the host starting", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		c := newCluster()
		cause := errors.New("cannot load configuration")
		failing := &service{id: "failing", journal: c.journal, initErr: cause}
		h, err := host.New("host", c.options(host.WithServices(failing))...)
		require.NoError(t, err)

		err = h.StartAsync(context.Background())
		require.ErrorIs(t, err, cause)
		require.ErrorIs(t, err, gerrors.ErrStageStartFailed)
		assert.Equal(t, host.Starting, h.State())

		require.ErrorIs(t, h.Shutdown(), gerrors.ErrInvalidHostState)
		require.ErrorIs(t, h.StartAsync(context.Background()), gerrors.ErrHostAlreadyStarted)

		require.NoError(t, h.Abort(context.Background()))
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, 1, c.journal.Count("messages.stop"))
		assert.Zero(t, c.journal.Count("failing.stop"))
		require.NoError(t, h.Abort(context.Background()))
	})
	t.Run("With a cancelled start released by Abort", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		c := newCluster()
		h, err := host.New("host", c.options()...)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, h.StartAsync(ctx), context.Canceled)
		assert.Equal(t, host.Created, h.State())

		require.NoError(t, h.Abort(context.Background()))
		assert.Equal(t, host.Terminated, h.State())
		assert.True(t, h.Terminated().IsCompleted())
		assert.False(t, c.pool.Running())
		assert.Empty(t, c.journal.Steps())
	})
	t.Run("With a start failing before the runtime initializes", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		c := newCluster()
		h, err := host.New("host", c.options()...)
		require.NoError(t, err)

		cause := errors.New("port unavailable")
		h.Lifecycle().Subscribe("port", lifecycle.StageFirst, func(context.Context) error {
			return cause
		}, func(context.Context) error {
			c.journal.record("port.stop")
			return nil
		})

		require.ErrorIs(t, h.StartAsync(context.Background()), cause)
		assert.Equal(t, host.Created, h.State())

		require.NoError(t, h.Abort(context.Background()))
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, []string{"port.stop"}, c.journal.Steps())
		assert.False(t, c.pool.Running())
	})
	t.Run("With an init timeout failing the start", func(t *testing.T) {
		c := newCluster()
		slow := &service{id: "slow", journal: c.journal, initWait: 200 * time.Millisecond}
		h, err := host.New("host", c.options(host.WithServices(slow), host.WithInitTimeout(20*time.Millisecond))...)
		require.NoError(t, err)

		err = h.StartAsync(context.Background())
		require.ErrorIs(t, err, gerrors.ErrTimeout)
		var timeoutErr *gerrors.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, 20*time.Millisecond, timeoutErr.Timeout)
		assert.Equal(t, host.Starting, h.State())
		require.NoError(t, h.Abort(context.Background()))
	})
	t.Run("With duplicate services failing the start", func(t *testing.T) {
		c := newCluster()
		h, err := host.New("host", c.options(
			host.WithServices(&service{id: "svc", journal: c.journal}, &service{id: "svc", journal: c.journal}),
		)...)
		require.NoError(t, err)
		require.ErrorIs(t, h.StartAsync(context.Background()), gerrors.ErrDuplicateService)
		require.NoError(t, h.Abort(context.Background()))
	})
	t.Run("With an invalid service id failing the start", func(t *testing.T) {
		c := newCluster()
		h, err := host.New("host", c.options(host.WithServices(&service{id: "", journal: c.journal}))...)
		require.NoError(t, err)
		require.ErrorIs(t, h.StartAsync(context.Background()), gerrors.ErrInvalidServiceID)
		require.NoError(t, h.Abort(context.Background()))
	})
	t.Run("With late registrations ignored", func(t *testing.T) {
		c := newCluster()
		h, err := host.New("host", c.options()...)
		require.NoError(t, err)

		early := &service{id: "early", journal: c.journal}
		require.NoError(t, h.RegisterService(early))
		require.NoError(t, h.StartAsync(context.Background()))

		late := &service{id: "late", journal: c.journal}
		require.ErrorIs(t, h.RegisterService(late), gerrors.ErrRegistrationClosed)
		assert.Equal(t, []extension.Service{early}, h.Services())
		_, ok := h.Service("late")
		assert.False(t, ok)

		require.NoError(t, h.Shutdown())
		require.ErrorIs(t, h.RegisterService(late), gerrors.ErrRegistrationClosed)
		assert.Zero(t, c.journal.Count("late.init"))
		assert.Equal(t, 1, c.journal.Count("early.stop"))
	})
	t.Run("With discovered services appended to the registered ones", func(t *testing.T) {
		c := newCluster()
		registered := &service{id: "registered", journal: c.journal}
		discovered := &service{id: "discovered", journal: c.journal}
		h, err := host.New("host", c.options(
			host.WithServices(registered),
			host.WithServiceDiscovery(func() []extension.Service { return []extension.Service{discovered, nil} }),
		)...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		assert.Equal(t, []extension.Service{registered, discovered}, h.Services())
		require.NoError(t, h.Shutdown())
	})
	t.Run("With services stopped in reverse order", func(t *testing.T) {
		c := newCluster()
		h, err := host.New("host", c.options(
			host.WithServices(&service{id: "a", journal: c.journal}, &service{id: "b", journal: c.journal}, &service{id: "c", journal: c.journal}),
			host.WithReverseServiceStopOrder(true),
		)...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())

		var stops []string
		for _, step := range c.journal.Steps() {
			if step == "a.stop" || step == "b.stop" || step == "c.stop" {
				stops = append(stops, step)
			}
		}
		assert.Equal(t, []string{"c.stop", "b.stop", "a.stop"}, stops)
	})
	t.Run("With a service stop failure not halting the stop", func(t *testing.T) {
		c := newCluster()
		failing := mocks.NewService(t)
		failing.EXPECT().ID().Return("failing")
		failing.EXPECT().Init(mock.Anything, mock.Anything).Return(nil).Once()
		failing.EXPECT().Start(mock.Anything).Return(nil).Once()
		failing.EXPECT().Stop(mock.Anything).Return(errors.New("cannot flush")).Once()
		next := &service{id: "next", journal: c.journal}

		h, err := host.New("host", c.options(host.WithServices(failing, next))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, 1, c.journal.Count("next.stop"))
		assert.Equal(t, host.Terminated, h.State())
	})
	t.Run("With a second start rejected", func(t *testing.T) {
		c := newCluster()
		h, err := host.New("host", c.options()...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.ErrorIs(t, h.StartAsync(context.Background()), gerrors.ErrHostAlreadyStarted)
		require.NoError(t, h.Stop())
	})
	t.Run("With custom participants", func(t *testing.T) {
		c := newCluster()
		var observed []host.State
		var h *host.Host
		participant := lifecycle.ParticipantFunc(func(subject *lifecycle.Subject) {
			subject.Subscribe("application", lifecycle.StageApplicationServices, func(context.Context) error {
				observed = append(observed, h.State())
				return nil
			}, func(context.Context) error {
				observed = append(observed, h.State())
				return nil
			})
		})

		var err error
		h, err = host.New("host", c.options(host.WithParticipants(participant))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, []host.State{host.Starting, host.ShuttingDown}, observed)
	})
	t.Run("With stop failures reported to every caller", func(t *testing.T) {
		c := newCluster()
		cause := errors.New("cannot release the port")
		participant := lifecycle.ParticipantFunc(func(subject *lifecycle.Subject) {
			subject.Subscribe("port", lifecycle.StageFirst, nil, func(context.Context) error {
				time.Sleep(20 * time.Millisecond)
				return cause
			})
		})

		h, err := host.New("host", c.options(host.WithParticipants(participant))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = h.Shutdown()
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.ErrorIs(t, err, cause)
		}
		_, err = h.Terminated().Await(context.Background())
		require.ErrorIs(t, err, cause)
		assert.Equal(t, host.Terminated, h.State())
	})
	t.Run("With a departure notice failure only logged", func(t *testing.T) {
		gateway := mocks.NewGateway(t)
		gateway.EXPECT().SendStopSendMessages(mock.Anything).Return(errors.New("peer unreachable"))

		messageCenter := mocks.NewMessageCenter(t)
		messageCenter.EXPECT().Gateway().Return(gateway)
		messageCenter.EXPECT().OutboundQueueLen().Return(0)
		messageCenter.EXPECT().StopAcceptingClientMessages(mock.Anything).Return(nil).Once()
		messageCenter.EXPECT().BlockApplicationMessages().Once()
		messageCenter.EXPECT().Stop(mock.Anything).Return(errors.New("transport already closed")).Once()

		catalog := mocks.NewCatalog(t)
		catalog.EXPECT().DeactivateAllActivations(mock.Anything).Return(errors.New("state lost")).Once()

		reminders := mocks.NewReminderService(t)
		reminders.EXPECT().Start(mock.Anything).Return(nil).Once()
		reminders.EXPECT().Stop(mock.Anything).Return(nil).Once()

		h, err := host.New("host",
			host.WithLogger(log.DiscardLogger),
			host.WithMessageCenter(messageCenter),
			host.WithCatalog(catalog),
			host.WithReminderService(reminders),
			host.WithStopPollInterval(5*time.Millisecond),
		)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, host.Terminated, h.State())
	})
	t.Run("With a reminder start failure failing the start", func(t *testing.T) {
		cause := errors.New("scheduler unavailable")
		reminders := mocks.NewReminderService(t)
		reminders.EXPECT().Start(mock.Anything).Return(cause).Once()

		h, err := host.New("host", host.WithLogger(log.DiscardLogger), host.WithReminderService(reminders))
		require.NoError(t, err)
		require.ErrorIs(t, h.StartAsync(context.Background()), cause)
		// the host became active before the reminders failed
		assert.Equal(t, host.Running, h.State())
		require.NoError(t, h.Stop())
	})
	t.Run("With an externally managed worker pool", func(t *testing.T) {
		pool := workerpool.New()
		pool.Start()
		defer pool.Stop()

		h, err := host.New("host", host.WithLogger(log.DiscardLogger), host.WithWorkerPool(pool))
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.True(t, pool.Running())
	})
}

func TestShutdownHooks(t *testing.T) {
	t.Run("With hooks run before any other stop step", func(t *testing.T) {
		c := newCluster()
		hook := mocks.NewShutdownHook(t)
		hook.EXPECT().Execute(mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			c.journal.record("hook")
		}).Return(nil).Once()

		h, err := host.New("host", c.options(host.WithShutdownHooks(hook))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, "hook", c.journal.Steps()[0])
	})
	t.Run("With a failing hook forcing the teardown", func(t *testing.T) {
		c := newCluster()
		failing := mocks.NewShutdownHook(t)
		failing.EXPECT().Execute(mock.Anything, mock.Anything).Return(errors.New("cannot deregister")).Once()
		failing.EXPECT().Recovery().Return(host.NewShutdownHookRecovery()).Once()
		skipped := mocks.NewShutdownHook(t)

		svc := &service{id: "svc", journal: c.journal}
		h, err := host.New("host", c.options(host.WithShutdownHooks(failing, skipped), host.WithServices(svc))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())

		assert.Equal(t, host.Terminated, h.State())
		assert.Zero(t, c.journal.Count("svc.stop"))
		assert.Zero(t, c.journal.Count("directory.stop"))
		assert.Zero(t, c.journal.Count("clients.stop"))
		assert.Equal(t, 1, c.journal.Count("reminders.stop"))
		assert.Equal(t, 1, c.journal.Count("messages.stop"))
		skipped.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
	t.Run("With a skipped hook failure", func(t *testing.T) {
		c := newCluster()
		failing := mocks.NewShutdownHook(t)
		failing.EXPECT().Execute(mock.Anything, mock.Anything).Return(errors.New("cannot deregister")).Once()
		failing.EXPECT().Recovery().Return(host.NewShutdownHookRecovery(
			host.WithShutdownHookRecoveryStrategy(host.ShouldSkip),
		)).Once()
		next := mocks.NewShutdownHook(t)
		next.EXPECT().Execute(mock.Anything, mock.Anything).Return(nil).Once()

		svc := &service{id: "svc", journal: c.journal}
		h, err := host.New("host", c.options(host.WithShutdownHooks(failing, next), host.WithServices(svc))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, host.Terminated, h.State())
		assert.Equal(t, 1, c.journal.Count("svc.stop"))
		assert.Equal(t, 1, c.journal.Count("directory.stop"))
	})
	t.Run("With a retried hook", func(t *testing.T) {
		c := newCluster()
		hook := mocks.NewShutdownHook(t)
		hook.EXPECT().Execute(mock.Anything, mock.Anything).Return(errors.New("transient")).Once()
		hook.EXPECT().Execute(mock.Anything, mock.Anything).Return(nil).Once()
		hook.EXPECT().Recovery().Return(host.NewShutdownHookRecovery(
			host.WithShutdownHookRecoveryStrategy(host.ShouldRetryAndFail),
			host.WithShutdownHookRetry(3, 5*time.Millisecond),
		)).Once()

		svc := &service{id: "svc", journal: c.journal}
		h, err := host.New("host", c.options(host.WithShutdownHooks(hook), host.WithServices(svc))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, 1, c.journal.Count("svc.stop"))
	})
	t.Run("With a panicking hook", func(t *testing.T) {
		c := newCluster()
		hook := mocks.NewShutdownHook(t)
		hook.EXPECT().Execute(mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("boom") }).Once()
		hook.EXPECT().Recovery().Return(nil).Once()

		h, err := host.New("host", c.options(host.WithShutdownHooks(hook))...)
		require.NoError(t, err)
		require.NoError(t, h.StartAsync(context.Background()))
		require.NoError(t, h.Shutdown())
		assert.Equal(t, host.Terminated, h.State())
	})
	t.Run("With recovery defaults", func(t *testing.T) {
		recovery := host.NewShutdownHookRecovery()
		retries, interval := recovery.Retry()
		assert.Equal(t, host.DefaultShutdownRecoveryMaxRetries, retries)
		assert.Equal(t, host.DefaultShutdownHookRecoveryRetryInterval, interval)
		assert.Equal(t, host.ShouldFail, recovery.Strategy())
	})
}
