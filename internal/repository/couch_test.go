package repository

import (
	"net/http"
	"testing"

	"github.com/go-kivik/kivik/v4"
	"github.com/go-kivik/kivik/v4/driver"
	"github.com/go-kivik/kivik/v4/mockdb"
)

const testDBName = "devconnector"

// statusError carries an HTTP status the way CouchDB driver errors do, so
// kivik.HTTPStatus can read it.
type statusError int

func (e statusError) Error() string   { return http.StatusText(int(e)) }
func (e statusError) HTTPStatus() int { return int(e) }

func newCouchMock(t *testing.T) (*kivik.Client, *mockdb.Client) {
	t.Helper()
	client, mock := mockdb.NewT(t)
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
	return client, mock
}

// expectDB queues the DB() call every repository method starts with.
func expectDB(mock *mockdb.Client) *mockdb.DB {
	db := mock.NewDB()
	mock.ExpectDB().WithName(testDBName).WillReturn(db)
	return db
}

func optionValue(opts driver.Options, key string) interface{} {
	params := map[string]interface{}{}
	opts.Apply(params)
	return params[key]
}
