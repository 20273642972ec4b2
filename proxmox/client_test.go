package proxmox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pvelist/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePVE serves handler under /api2/json and counts requests.
func fakePVE(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api2/json/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	})
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Options{BaseURL: srv.URL + "/api2/json", Timeout: 5 * time.Second})
	return client, hits
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

var testSession = &Session{Ticket: "PVE:root@pam:65F0A1B2::c2lnbmF0dXJl", CSRFToken: "65F0A1B2:Y3NyZg"}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://pve1:8006/api2/json", BaseURL("pve1", 0))
	assert.Equal(t, "https://10.0.0.5:8443/api2/json", BaseURL("10.0.0.5", 8443))
}

func TestCredentials_Principal(t *testing.T) {
	creds := Credentials{Username: "alice", Realm: "pve", Password: "secret"}
	assert.Equal(t, "alice@pve", creds.Principal())
}

func TestLogin_Success(t *testing.T) {
	client, hits := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/access/ticket", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "root@pam", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		writeBody(w, http.StatusOK, `{"data":{"ticket":"T1","CSRFPreventionToken":"C1","username":"root@pam"}}`)
	})

	session, err := client.Login(context.Background(), Credentials{Username: "root", Realm: "pam", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, &Session{Ticket: "T1", CSRFToken: "C1"}, session)
	assert.Equal(t, "PVEAuthCookie=T1", session.Cookie())
	assert.Equal(t, int32(1), hits.Load())
}

func TestLogin_Unauthorized(t *testing.T) {
	client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{"data":null,"message":"authentication failure"}`)
	})

	session, err := client.Login(context.Background(), Credentials{Username: "root", Realm: "pam", Password: "wrong"})
	assert.Nil(t, session)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHTTP))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "authentication failure", httpErr.Payload["message"])
	assert.Contains(t, err.Error(), "authentication failure")
}

func TestLogin_IncompleteResponses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "ticket only", body: `{"data":{"ticket":"T1"}}`, wantErr: ErrAuthDataMissing},
		{name: "csrf only", body: `{"data":{"CSRFPreventionToken":"C1"}}`, wantErr: ErrAuthDataMissing},
		{name: "empty ticket", body: `{"data":{"ticket":"","CSRFPreventionToken":"C1"}}`, wantErr: ErrAuthDataMissing},
		{name: "empty data object", body: `{"data":{}}`, wantErr: ErrAuthDataMissing},
		{name: "null data", body: `{"data":null}`, wantErr: ErrDecode},
		{name: "no data", body: `{}`, wantErr: ErrDecode},
		{name: "data not an object", body: `{"data":"T1"}`, wantErr: ErrDecode},
		{name: "not json", body: `<html>proxy error</html>`, wantErr: ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, http.StatusOK, tt.body)
			})

			session, err := client.Login(context.Background(), Credentials{Username: "root", Realm: "pam", Password: "x"})
			assert.Nil(t, session)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLogin_TransportError(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Options{BaseURL: url + "/api2/json", Timeout: time.Second})
	session, err := client.Login(context.Background(), Credentials{Username: "root", Realm: "pam", Password: "x"})
	assert.Nil(t, session)
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestLogin_VerifyTLSRejectsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	client := NewClient(Options{BaseURL: srv.URL + "/api2/json", VerifyTLS: true, Timeout: time.Second})
	_, err := client.Login(context.Background(), Credentials{Username: "root", Realm: "pam", Password: "x"})
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestListVMsAndContainers(t *testing.T) {
	client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api2/json/cluster/resources", r.URL.Path)
		assert.Equal(t, "vm", r.URL.Query().Get("type"))
		assert.Equal(t, "PVEAuthCookie="+testSession.Ticket, r.Header.Get("Cookie"))
		assert.Equal(t, testSession.CSRFToken, r.Header.Get("CSRFPreventionToken"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeBody(w, http.StatusOK, `{"data":[
			{"type":"qemu","vmid":105,"name":"web-1","status":"running","node":"pve1","maxmem":2147483648},
			{"type":"storage","storage":"local","node":"pve1","status":"available"},
			{"type":"lxc","vmid":200,"name":"dns","status":"stopped","node":"pve2"},
			{"type":"node","node":"pve1","status":"online"}
		]}`)
	})

	resources, err := client.ListVMsAndContainers(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, []models.Resource{
		{Type: models.QEMU, VMID: 105, Name: "web-1", Status: "running", Node: "pve1"},
		{Type: models.LXC, VMID: 200, Name: "dns", Status: "stopped", Node: "pve2"},
	}, resources)
}

func TestListVMsAndContainers_EmptyIsNotAnError(t *testing.T) {
	client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"data":[{"type":"storage","node":"pve1"}]}`)
	})

	resources, err := client.ListVMsAndContainers(context.Background(), testSession)
	require.NoError(t, err)
	assert.NotNil(t, resources)
	assert.Empty(t, resources)
}

func TestListVMsAndContainers_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"data":null}`, wantErr: ErrHTTP},
		{name: "expired ticket", status: http.StatusUnauthorized, body: ``, wantErr: ErrHTTP},
		{name: "data is an object", status: http.StatusOK, body: `{"data":{"type":"qemu"}}`, wantErr: ErrDecode},
		{name: "truncated body", status: http.StatusOK, body: `{"data":[{"type":"qemu","vmid":1`, wantErr: ErrDecode},
		{name: "bad vmid", status: http.StatusOK, body: `{"data":[{"type":"qemu","vmid":"one"}]}`, wantErr: ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, tt.status, tt.body)
			})

			resources, err := client.ListVMsAndContainers(context.Background(), testSession)
			assert.Nil(t, resources)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestListVMsAndContainers_InvalidSession(t *testing.T) {
	client, hits := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"data":[]}`)
	})

	for _, session := range []*Session{nil, {Ticket: "T1"}, {CSRFToken: "C1"}} {
		resources, err := client.ListVMsAndContainers(context.Background(), session)
		assert.Nil(t, resources)
		assert.ErrorIs(t, err, ErrInvalidSession)
	}
	assert.Zero(t, hits.Load())
}

func TestDecodeGuests(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []models.Resource
	}{
		{
			name: "keeps guests in order",
			data: `[{"type":"storage"},{"type":"lxc","vmid":9,"name":"b"},{"type":"sdn"},{"type":"qemu","vmid":3,"name":"a"}]`,
			want: []models.Resource{{Type: models.LXC, VMID: 9, Name: "b"}, {Type: models.QEMU, VMID: 3, Name: "a"}},
		},
		{
			name: "odd non-guest fields are ignored",
			data: `[{"type":"sdn","vmid":"x"},{"type":"pool","name":["a"]},{"type":"qemu","vmid":7}]`,
			want: []models.Resource{{Type: models.QEMU, VMID: 7}},
		},
		{
			name: "entries without a string type are ignored",
			data: `[42,null,{"type":1,"vmid":"x"},{"type":"lxc","vmid":8}]`,
			want: []models.Resource{{Type: models.LXC, VMID: 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeGuests(json.RawMessage(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeGuests_MalformedGuest(t *testing.T) {
	_, err := DecodeGuests(json.RawMessage(`[{"type":"storage"},{"type":"qemu","vmid":"one"}]`))
	assert.Error(t, err)

	_, err = DecodeGuests(json.RawMessage(`{"type":"qemu"}`))
	assert.Error(t, err)
}

func TestListNodes(t *testing.T) {
	client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes", r.URL.Path)
		writeBody(w, http.StatusOK, `{"data":[{"node":"pve1","status":"online","cpu":0.12,"maxcpu":8,"mem":1024,"maxmem":4096}]}`)
	})

	nodes, err := client.ListNodes(context.Background(), testSession)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "pve1", nodes[0].Node)
	assert.Equal(t, 8, nodes[0].MaxCPU)
}

func TestPerformAction(t *testing.T) {
	client, _ := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve2/lxc/200/status/shutdown", r.URL.Path)
		assert.Equal(t, testSession.CSRFToken, r.Header.Get("CSRFPreventionToken"))
		writeBody(w, http.StatusOK, `{"data":"UPID:pve2:0000ABCD:vzshutdown:200:root@pam:"}`)
	})

	resource := models.Resource{Type: models.LXC, VMID: 200, Node: "pve2", Name: "dns"}
	upid, err := client.PerformAction(context.Background(), testSession, resource, "shutdown")
	require.NoError(t, err)
	assert.Equal(t, "UPID:pve2:0000ABCD:vzshutdown:200:root@pam:", upid)
}

func TestPerformAction_RejectedLocally(t *testing.T) {
	client, hits := fakePVE(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"data":"UPID"}`)
	})
	guest := models.Resource{Type: models.QEMU, VMID: 105, Node: "pve1"}

	_, err := client.PerformAction(context.Background(), testSession, guest, "destroy")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = client.PerformAction(context.Background(), testSession, models.Resource{Type: models.QEMU, VMID: 105}, "start")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = client.PerformAction(context.Background(), nil, guest, "start")
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.Zero(t, hits.Load())
}

func TestFindResource(t *testing.T) {
	resources := []models.Resource{{VMID: 10, Name: "a"}, {VMID: 50, Name: "b"}}

	found, err := FindResource(resources, 50)
	require.NoError(t, err)
	assert.Equal(t, "b", found.Name)

	_, err = FindResource(resources, 99)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
