package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"wedding-guest-list/internal/model"
	apperrors "wedding-guest-list/pkg/app_errors"

	bolt "go.etcd.io/bbolt"
)

const bucketGuests = "guests"

var errBucketMissing = errors.New("guests bucket missing, store not initialized")

// BoltGuestRepository keeps guests as JSON values keyed by the bucket
// sequence, so ids grow monotonically and are never handed out twice.
type BoltGuestRepository struct {
	db  *bolt.DB
	now func() time.Time
}

func NewBoltGuestRepository(db *bolt.DB) GuestRepository {
	return &BoltGuestRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *BoltGuestRepository) Initialize(ctx context.Context) (err error) {
	_, span := startSpan(ctx, "bbolt", "Initialize")
	defer func() { endSpan(span, err) }()

	err = r.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketGuests))
		return err
	})
	if err != nil {
		return storageError("initialize", err)
	}
	return nil
}

func (r *BoltGuestRepository) Create(ctx context.Context, input model.GuestInput) (id int64, err error) {
	_, span := startSpan(ctx, "bbolt", "Create")
	defer func() { endSpan(span, err) }()

	err = r.update("create guest", func(b *bolt.Bucket) error {
		// checked inside the transaction: the bucket has no schema of its own
		if err := input.Validate(); err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		now := r.now().UTC()
		guest := &model.Guest{
			ID:         int64(seq),
			Name:       input.Name,
			Count:      input.Count,
			Side:       input.Side,
			Attendance: input.Attendance,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := putGuest(b, guest); err != nil {
			return err
		}
		id = guest.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *BoltGuestRepository) List(ctx context.Context) (guests []*model.Guest, err error) {
	_, span := startSpan(ctx, "bbolt", "List")
	defer func() { endSpan(span, err) }()

	guests = make([]*model.Guest, 0)
	err = r.view("list guests", func(b *bolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			guest, err := decodeGuest(v)
			if err != nil {
				return err
			}
			guests = append(guests, guest)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// ForEach walks keys in id order, so a stable sort leaves ties by id.
	sort.SliceStable(guests, func(i, j int) bool {
		return guests[i].Name < guests[j].Name
	})
	return guests, nil
}

func (r *BoltGuestRepository) FindByID(ctx context.Context, id int64) (guest *model.Guest, err error) {
	_, span := startSpan(ctx, "bbolt", "FindByID")
	defer func() { endSpan(span, err) }()

	err = r.view("find guest", func(b *bolt.Bucket) error {
		v := getGuest(b, id)
		if v == nil {
			return apperrors.ErrGuestNotFound
		}
		var err error
		guest, err = decodeGuest(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *BoltGuestRepository) Update(ctx context.Context, id int64, input model.GuestInput) (found bool, err error) {
	_, span := startSpan(ctx, "bbolt", "Update")
	defer func() { endSpan(span, err) }()

	err = r.update("update guest", func(b *bolt.Bucket) error {
		if err := input.Validate(); err != nil {
			return err
		}
		v := getGuest(b, id)
		if v == nil {
			return nil
		}
		guest, err := decodeGuest(v)
		if err != nil {
			return err
		}
		guest.Name = input.Name
		guest.Count = input.Count
		guest.Side = input.Side
		guest.Attendance = input.Attendance
		guest.UpdatedAt = laterOf(r.now().UTC(), guest.UpdatedAt)
		if err := putGuest(b, guest); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *BoltGuestRepository) Delete(ctx context.Context, id int64) (found bool, err error) {
	_, span := startSpan(ctx, "bbolt", "Delete")
	defer func() { endSpan(span, err) }()

	err = r.update("delete guest", func(b *bolt.Bucket) error {
		if getGuest(b, id) == nil {
			return nil
		}
		found = true
		return b.Delete(guestKey(id))
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *BoltGuestRepository) Statistics(ctx context.Context) (stats model.Statistics, err error) {
	_, span := startSpan(ctx, "bbolt", "Statistics")
	defer func() { endSpan(span, err) }()

	err = r.view("guest statistics", func(b *bolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			guest, err := decodeGuest(v)
			if err != nil {
				return err
			}
			stats.Add(guest)
			return nil
		})
	})
	if err != nil {
		return model.Statistics{}, err
	}
	return stats, nil
}

func (r *BoltGuestRepository) update(op string, fn func(b *bolt.Bucket) error) error {
	return classifyBoltError(op, r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketGuests))
		if b == nil {
			return errBucketMissing
		}
		return fn(b)
	}))
}

func (r *BoltGuestRepository) view(op string, fn func(b *bolt.Bucket) error) error {
	return classifyBoltError(op, r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketGuests))
		if b == nil {
			return errBucketMissing
		}
		return fn(b)
	}))
}

func classifyBoltError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrGuestNotFound), errors.Is(err, apperrors.ErrConstraintViolation):
		return err
	default:
		return storageError(op, err)
	}
}

func guestKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func getGuest(b *bolt.Bucket, id int64) []byte {
	if id < 1 {
		return nil
	}
	return b.Get(guestKey(id))
}

func putGuest(b *bolt.Bucket, guest *model.Guest) error {
	data, err := json.Marshal(guest)
	if err != nil {
		return err
	}
	return b.Put(guestKey(guest.ID), data)
}

func decodeGuest(v []byte) (*model.Guest, error) {
	guest := &model.Guest{}
	if err := json.Unmarshal(v, guest); err != nil {
		return nil, err
	}
	return guest, nil
}
