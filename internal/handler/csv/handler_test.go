package csv_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	csvhandler "github.com/w-h-a/tabular/internal/handler/csv"
	"github.com/w-h-a/tabular/internal/service/ingest"
	"github.com/w-h-a/tabular/internal/service/lookup"
	"github.com/w-h-a/tabular/store"
	"github.com/w-h-a/tabular/store/memory"
	"github.com/w-h-a/tabular/store/sqlite"
)

const header = "id_str,a_int,opt_str,opt_float\n"

func newRouter(t *testing.T, st store.Store, maxBody int64) *mux.Router {
	t.Helper()

	require.NoError(t, st.EnsureSchema(context.Background()))

	router := mux.NewRouter()
	csvhandler.NewHandler(
		ingest.New(st, nil, ingest.WithConcurrency(4)),
		lookup.New(st, nil, time.Second),
		nil,
		maxBody,
	).Register(router)

	return router
}

func do(router http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func stores(t *testing.T) map[string]store.Store {
	t.Helper()
	sq := sqlite.NewStore(sqlite.WithMemory())
	t.Cleanup(func() { sq.Close() })
	return map[string]store.Store{
		"memory": memory.NewStore(),
		"sqlite": sq,
	}
}

func TestScenario(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			router := newRouter(t, st, 0)

			rsp := do(router, http.MethodPost, "/csv", header+"rec1,42,hello,3.14\nrec2,7,,")
			require.Equal(t, http.StatusOK, rsp.Code)
			require.Equal(t, "application/json", rsp.Header().Get("Content-Type"))
			require.JSONEq(t, `[
				{"id_str":"rec1","a_int":42,"opt_str":"hello","opt_float":3.14},
				{"id_str":"rec2","a_int":7,"opt_str":null,"opt_float":null}
			]`, rsp.Body.String())

			rsp = do(router, http.MethodGet, "/csv/rec1", "")
			require.Equal(t, http.StatusOK, rsp.Code)
			require.JSONEq(t, `[{"id_str":"rec1","a_int":42,"opt_str":"hello","opt_float":3.14}]`, rsp.Body.String())

			rsp = do(router, http.MethodGet, "/csv/rec2", "")
			require.Equal(t, http.StatusOK, rsp.Code)
			require.JSONEq(t, `[{"id_str":"rec2","a_int":7,"opt_str":null,"opt_float":null}]`, rsp.Body.String())

			rsp = do(router, http.MethodGet, "/csv/rec3", "")
			require.Equal(t, http.StatusNotFound, rsp.Code)
			require.JSONEq(t, `[]`, rsp.Body.String())
		})
	}
}

func TestTransformDecodeFailure(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			router := newRouter(t, st, 0)

			payload := header + "a,1,,\nb,2,,\nc,x,,\nd,4,,\ne,5,,\n"
			rsp := do(router, http.MethodPost, "/csv", payload)
			require.Equal(t, http.StatusInternalServerError, rsp.Code)
			require.Contains(t, rsp.Body.String(), `"err":"type=csv_deserialization_error`)

			for _, id := range []string{"a", "b", "c", "d", "e"} {
				rsp := do(router, http.MethodGet, "/csv/"+id, "")
				require.Equal(t, http.StatusNotFound, rsp.Code)
			}
		})
	}
}

func TestTransformDuplicate(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			router := newRouter(t, st, 0)

			rsp := do(router, http.MethodPost, "/csv", header+"rec1,1,,\n")
			require.Equal(t, http.StatusOK, rsp.Code)

			rsp = do(router, http.MethodPost, "/csv", header+"rec1,2,,\n")
			require.Equal(t, http.StatusInternalServerError, rsp.Code)
			require.Contains(t, rsp.Body.String(), `"err":"type=insert_error`)
			require.Contains(t, rsp.Body.String(), "rec1")

			rsp = do(router, http.MethodPost, "/csv", header+"x,1,,\nx,2,,\n")
			require.Equal(t, http.StatusInternalServerError, rsp.Code)
		})
	}
}

func TestTransformPersistsEveryLine(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			router := newRouter(t, st, 0)

			var sb strings.Builder
			sb.WriteString(header)
			ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
			for i, id := range ids {
				sb.WriteString(id + "," + string(rune('0'+i)) + ",,\n")
			}

			rsp := do(router, http.MethodPost, "/csv", sb.String())
			require.Equal(t, http.StatusOK, rsp.Code)

			for _, id := range ids {
				rsp := do(router, http.MethodGet, "/csv/"+id, "")
				require.Equal(t, http.StatusOK, rsp.Code)
				require.Contains(t, rsp.Body.String(), `"id_str":"`+id+`"`)
			}
		})
	}
}

func TestTransformBodyTooLarge(t *testing.T) {
	router := newRouter(t, memory.NewStore(), 16)

	rsp := do(router, http.MethodPost, "/csv", header+"rec1,1,,\n")
	require.Equal(t, http.StatusInternalServerError, rsp.Code)
	require.Contains(t, rsp.Body.String(), "type=csv_deserialization_error")
}

func TestQueryAsCSV(t *testing.T) {
	router := newRouter(t, memory.NewStore(), 0)

	rsp := do(router, http.MethodPost, "/csv", header+"rec1,42,hello,3.14\n")
	require.Equal(t, http.StatusOK, rsp.Code)

	rsp = do(router, http.MethodGet, "/csv/rec1", "", "Accept", "text/csv")
	require.Equal(t, http.StatusOK, rsp.Code)
	require.Equal(t, "text/csv", rsp.Header().Get("Content-Type"))
	require.Equal(t, header+"rec1,42,hello,3.14\n", rsp.Body.String())

	rsp = do(router, http.MethodGet, "/csv/rec1", "", "Accept", "application/json, text/csv")
	require.Equal(t, "application/json", rsp.Header().Get("Content-Type"))

	rsp = do(router, http.MethodGet, "/csv/nope", "", "Accept", "text/csv")
	require.Equal(t, http.StatusNotFound, rsp.Code)
	require.JSONEq(t, `[]`, rsp.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	router := newRouter(t, memory.NewStore(), 0)

	rsp := do(router, http.MethodDelete, "/csv/rec1", "")
	require.Equal(t, http.StatusMethodNotAllowed, rsp.Code)
}
