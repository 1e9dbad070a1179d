package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
	"github.com/veltrack-io/veltrack/pkg/log"
)

// fakeRepo is an in-memory Repository with snapshot rollback so transaction
// atomicity is observable in tests.
type fakeRepo struct {
	vehicles  map[string]*model.Vehicle
	positions []model.Position
	events    []model.Event
	commands  []model.CommandLogEntry
	pins      map[int64]string

	failEventAppend bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		vehicles: make(map[string]*model.Vehicle),
		pins:     make(map[int64]string),
	}
}

func (f *fakeRepo) addVehicle(v *model.Vehicle) { f.vehicles[v.Plate] = v }

func (f *fakeRepo) Vehicle() core.VehicleRepository       { return &fakeVehicleRepo{f} }
func (f *fakeRepo) Position() core.PositionRepository     { return &fakePositionRepo{f} }
func (f *fakeRepo) Event() core.EventRepository           { return &fakeEventRepo{f} }
func (f *fakeRepo) Client() core.ClientRepository         { return &fakeClientRepo{f} }
func (f *fakeRepo) CommandLog() core.CommandLogRepository { return &fakeCommandLogRepo{f} }

func (f *fakeRepo) InTx(ctx context.Context, plate string, fn func(core.Repository) error) error {
	positions := append([]model.Position(nil), f.positions...)
	events := append([]model.Event(nil), f.events...)
	commands := append([]model.CommandLogEntry(nil), f.commands...)
	vehicles := make(map[string]*model.Vehicle, len(f.vehicles))
	for k, v := range f.vehicles {
		clone := *v
		vehicles[k] = &clone
	}

	if err := fn(f); err != nil {
		f.positions = positions
		f.events = events
		f.commands = commands
		f.vehicles = vehicles
		return err
	}
	return nil
}

type fakeVehicleRepo struct{ *fakeRepo }

func (f *fakeVehicleRepo) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	v, ok := f.vehicles[plate]
	if !ok {
		return nil, util.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (f *fakeVehicleRepo) SetIgnition(ctx context.Context, vehicleID int64, on bool) error {
	for _, v := range f.vehicles {
		if v.ID == vehicleID {
			v.Ignition = on
			return nil
		}
	}
	return util.ErrNotFound
}

func (f *fakeVehicleRepo) TouchLastContact(ctx context.Context, vehicleID int64, ts time.Time) error {
	for _, v := range f.vehicles {
		if v.ID == vehicleID {
			v.LastContact = ts
			return nil
		}
	}
	return util.ErrNotFound
}

type fakePositionRepo struct{ *fakeRepo }

func (f *fakePositionRepo) LastByPlate(ctx context.Context, plate string) (*model.Position, error) {
	var last *model.Position
	for i := range f.positions {
		p := &f.positions[i]
		if p.Plate != plate {
			continue
		}
		if last == nil || p.Timestamp.After(last.Timestamp) {
			last = p
		}
	}
	if last == nil {
		return nil, util.ErrNotFound
	}
	clone := *last
	return &clone, nil
}

func (f *fakePositionRepo) Append(ctx context.Context, p *model.Position) error {
	p.ID = int64(len(f.positions) + 1)
	f.positions = append(f.positions, *p)
	return nil
}

func (f *fakePositionRepo) Range(ctx context.Context, plate string, from, to time.Time) ([]model.Position, error) {
	var out []model.Position
	for i := range f.positions {
		p := f.positions[i]
		if p.Plate == plate && !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeEventRepo struct{ *fakeRepo }

func (f *fakeEventRepo) LastByVehicle(ctx context.Context, vehicleID int64) (*model.Event, error) {
	var last *model.Event
	for i := range f.events {
		e := &f.events[i]
		if e.VehicleID != vehicleID {
			continue
		}
		if last == nil || !e.Timestamp.Before(last.Timestamp) {
			last = e
		}
	}
	if last == nil {
		return nil, util.ErrNotFound
	}
	clone := *last
	return &clone, nil
}

func (f *fakeEventRepo) Append(ctx context.Context, e *model.Event) error {
	if f.failEventAppend {
		return errors.New("event append failed")
	}
	e.ID = int64(len(f.events) + 1)
	f.events = append(f.events, *e)
	return nil
}

type fakeClientRepo struct{ *fakeRepo }

func (f *fakeClientRepo) PIN(ctx context.Context, clientID int64) (string, error) {
	pin, ok := f.pins[clientID]
	if !ok {
		return "", util.ErrNotFound
	}
	if pin == "" {
		return "", util.ErrPinNotSet
	}
	return pin, nil
}

type fakeCommandLogRepo struct{ *fakeRepo }

func (f *fakeCommandLogRepo) Append(ctx context.Context, entry *model.CommandLogEntry) error {
	entry.ID = int64(len(f.commands) + 1)
	f.commands = append(f.commands, *entry)
	return nil
}

type fakeLive struct {
	states map[string]*core.LiveState
	err    error
}

func newFakeLive() *fakeLive {
	return &fakeLive{states: make(map[string]*core.LiveState)}
}

func (f *fakeLive) Put(ctx context.Context, state *core.LiveState) error {
	if f.err != nil {
		return f.err
	}
	clone := *state
	f.states[state.Plate] = &clone
	return nil
}

func (f *fakeLive) Get(ctx context.Context, plate string) (*core.LiveState, error) {
	if f.err != nil {
		return nil, f.err
	}
	state, ok := f.states[plate]
	if !ok {
		return nil, util.ErrNotFound
	}
	clone := *state
	return &clone, nil
}

type notified struct {
	plate string
	event model.Event
}

type fakeNotifier struct {
	sent []notified
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, plate string, event *model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, notified{plate: plate, event: *event})
	return nil
}

type dispatched struct {
	plate   string
	command model.CommandType
}

type fakeDispatcher struct {
	sent []dispatched
	err  error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, plate string, command model.CommandType) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, dispatched{plate: plate, command: command})
	return nil
}

type fakeArchive struct {
	objects map[string][]byte
	putErr  error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string][]byte)}
}

func (f *fakeArchive) Put(ctx context.Context, objectKey, contentType string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[objectKey] = append([]byte(nil), body...)
	return nil
}

func (f *fakeArchive) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if _, ok := f.objects[objectKey]; !ok {
		return "", util.ErrNotFound
	}
	return fmt.Sprintf("https://exports.test/%s?expires=%ds", objectKey, int(expiry.Seconds())), nil
}

func mustClassifier() *Classifier {
	c, err := NewClassifier(nil)
	if err != nil {
		panic(err)
	}
	return c
}

func newTestService(repo *fakeRepo, live *fakeLive, notifier *fakeNotifier, archive *fakeArchive) *Service {
	var l core.LiveStateStore
	if live != nil {
		l = live
	}
	var n core.EventNotifier
	if notifier != nil {
		n = notifier
	}
	var a core.ArchiveStore
	if archive != nil {
		a = archive
	}
	return New(repo, l, n, nil, a, mustClassifier(), log.NewNopLogger())
}
