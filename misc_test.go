package pagecursor

import (
	"context"
	"errors"
	"slices"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

var errUnavailable = errors.New("service unavailable")

type tRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// tMemoryCollection is an in-memory RemoteCollection. With counted unset it
// behaves like a backend answering bare arrays.
type tMemoryCollection struct {
	records []tRecord
	nextID  int
	counted bool

	listErr   error
	mutateErr error
	onList    func()

	listCalls    int
	createCalls  int
	replaceCalls int
	removeCalls  int
}

func newMemoryCollection(counted bool, names ...string) *tMemoryCollection {
	m := &tMemoryCollection{counted: counted}
	for _, name := range names {
		m.nextID++
		m.records = append(m.records, tRecord{ID: m.nextID, Name: name})
	}

	return m
}

func (m *tMemoryCollection) List(_ context.Context, q ListQuery) (ListResponse[tRecord], error) {
	m.listCalls++
	if m.onList != nil {
		m.onList()
	}
	if m.listErr != nil {
		return ListResponse[tRecord]{}, m.listErr
	}

	matched := lo.Filter(m.records, func(rec tRecord, _ int) bool {
		for field, value := range q.Filter {
			got, found := identityOf(rec, field, nil)
			if !found || !sameIdentity(got, value) {
				return false
			}
		}
		return true
	})

	rows := []tRecord{}
	if start := q.Offset(); start < len(matched) {
		rows = slices.Clone(matched[start:min(start+q.Limit, len(matched))])
	}

	return ListResponse[tRecord]{
		Rows:  rows,
		Total: lo.Ternary(m.counted, len(matched), TotalUnknown),
	}, nil
}

func (m *tMemoryCollection) Create(_ context.Context, payload tRecord) (tRecord, error) {
	m.createCalls++
	if m.mutateErr != nil {
		return tRecord{}, m.mutateErr
	}

	m.nextID++
	payload.ID = m.nextID
	m.records = append(m.records, payload)

	return payload, nil
}

func (m *tMemoryCollection) Replace(_ context.Context, id any, payload tRecord) (tRecord, error) {
	m.replaceCalls++
	if m.mutateErr != nil {
		return tRecord{}, m.mutateErr
	}

	i := m.find(id)
	if i == -1 {
		return tRecord{}, ErrNotFound
	}

	payload.ID = m.records[i].ID
	m.records[i] = payload

	return payload, nil
}

func (m *tMemoryCollection) Remove(_ context.Context, id any) error {
	m.removeCalls++
	if m.mutateErr != nil {
		return m.mutateErr
	}

	i := m.find(id)
	if i == -1 {
		return ErrNotFound
	}
	m.records = slices.Delete(m.records, i, i+1)

	return nil
}

func (m *tMemoryCollection) find(id any) int {
	return slices.IndexFunc(m.records, func(rec tRecord) bool {
		return sameIdentity(rec.ID, id)
	})
}

func (m *tMemoryCollection) calls() int {
	return m.listCalls + m.createCalls + m.replaceCalls + m.removeCalls
}
