package participants

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/fsm"

	"github.com/MattDevy/socrates-ledger/pkg/socrates"
)

type Status string

const (
	StatusUnregistered Status = "unregistered"
	StatusRegistered   Status = "registered"
	StatusMoved        Status = "moved"
)

// namespace derives participant IDs from conference and member IDs.
var namespace = uuid.MustParse("5b0e7c4e-2f7a-4c39-9d59-1f3f1f0a6c2e")

// ParticipantID returns the ID of the directory entry of a member in one
// conference.
func ParticipantID(conferenceID uuid.UUID, memberID string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(conferenceID.String()+"/"+memberID))
}

// Participant is the directory entry of one member.
type Participant struct {
	ID           uuid.UUID
	ConferenceID uuid.UUID
	MemberID     string
	SessionID    string
	RoomType     socrates.RoomType
	// RoomTypes holds every room type the member was in, oldest first.
	RoomTypes    []socrates.RoomType
	Status       Status
	RegisteredAt time.Time
	ChangedAt    time.Time
}

func (p *Participant) EntityID() uuid.UUID {
	return p.ID
}

func newLifecycle(status Status) *fsm.FSM {
	if status == "" {
		status = StatusUnregistered
	}
	return fsm.NewFSM(string(status),
		fsm.Events{
			{Name: "register", Src: []string{string(StatusUnregistered), string(StatusRegistered), string(StatusMoved)}, Dst: string(StatusRegistered)},
			{Name: "move", Src: []string{string(StatusRegistered), string(StatusMoved)}, Dst: string(StatusMoved)},
		},
		fsm.Callbacks{},
	)
}

// transition moves the participant through its lifecycle. Staying in the
// same state, as for a second move, is not an error.
func (p *Participant) transition(event string) error {
	lifecycle := newLifecycle(p.Status)
	if err := lifecycle.Event(event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return errors.Wrapf(err, "participant %s", p.MemberID)
		}
	}
	p.Status = Status(lifecycle.Current())
	return nil
}

// Projector keeps the participant directory. Reservations never reach it:
// whether they still hold a room is only known at query time.
type Projector struct {
	repo   eh.ReadWriteRepo
	repoMu sync.Mutex
}

// NewProjector initializes a new Projector saving into repo.
func NewProjector(repo eh.ReadWriteRepo) *Projector {
	return &Projector{repo: repo}
}

// HandlerType returns the EventHandlerType of the Projector
func (p *Projector) HandlerType() eh.EventHandlerType {
	return eh.EventHandlerType("participants")
}

// HandleEvent updates the entry of the member an event is about.
func (p *Projector) HandleEvent(ctx context.Context, event eh.Event) error {
	p.repoMu.Lock()
	defer p.repoMu.Unlock()

	var memberID string
	switch data := event.Data().(type) {
	case *socrates.ParticipantWasRegistered:
		memberID = data.MemberID
	case socrates.ParticipantWasRegistered:
		memberID = data.MemberID
	case *socrates.RoomTypeWasChanged:
		memberID = data.MemberID
	case socrates.RoomTypeWasChanged:
		memberID = data.MemberID
	default:
		return errors.Newf("projector: invalid event data type: %T", event.Data())
	}

	participant, err := p.find(ctx, event.AggregateID(), memberID)
	if err != nil {
		return err
	}

	switch data := event.Data().(type) {
	case *socrates.ParticipantWasRegistered:
		err = participant.register(event.AggregateID(), *data)
	case socrates.ParticipantWasRegistered:
		err = participant.register(event.AggregateID(), data)
	case *socrates.RoomTypeWasChanged:
		err = participant.move(*data)
	case socrates.RoomTypeWasChanged:
		err = participant.move(data)
	}
	if err != nil {
		return err
	}

	if err := p.repo.Save(ctx, participant); err != nil {
		return errors.Wrap(err, "projector: could not save")
	}
	return nil
}

func (p *Projector) find(ctx context.Context, conferenceID uuid.UUID, memberID string) (*Participant, error) {
	id := ParticipantID(conferenceID, memberID)
	entity, err := p.repo.Find(ctx, id)
	if errors.Is(err, eh.ErrEntityNotFound) {
		return &Participant{ID: id, ConferenceID: conferenceID, MemberID: memberID, Status: StatusUnregistered}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "could not find participant %s", memberID)
	}
	participant, ok := entity.(*Participant)
	if !ok {
		return nil, errors.New("projector: incorrect entity type")
	}
	return participant, nil
}

func (p *Participant) register(conferenceID uuid.UUID, data socrates.ParticipantWasRegistered) error {
	if err := p.transition("register"); err != nil {
		return err
	}
	p.ConferenceID = conferenceID
	p.SessionID = data.SessionID
	p.RoomType = data.RoomType
	p.RoomTypes = append(p.RoomTypes, data.RoomType)
	p.RegisteredAt = data.Timestamp
	p.ChangedAt = data.Timestamp
	return nil
}

func (p *Participant) move(data socrates.RoomTypeWasChanged) error {
	if err := p.transition("move"); err != nil {
		return err
	}
	p.RoomType = data.RoomType
	p.RoomTypes = append(p.RoomTypes, data.RoomType)
	p.ChangedAt = data.Timestamp
	return nil
}
