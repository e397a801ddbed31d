package interp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/uuid"
)

// ResourceID identifies an entry in the interpreter's resource table
// (spec §5 "Shared-resource policy"). It's a UUID rather than a bare
// index so a stale handle value copied into an unrelated variable can
// never alias a different, later resource in the same slot.
type ResourceID string

type fileResource struct {
	path   string
	file   *os.File
	closed bool
}

type processResource struct {
	cmd     *exec.Cmd
	stdout  *bytes.Buffer
	waited  bool
	waitErr error
}

type serverResource struct {
	addr     string
	handlers []func(ServerRequest) ServerResponse
	incoming chan requestEnvelope
	stop     chan struct{}
	closed   bool
}

// requestEnvelope carries one inbound HTTP request from the net/http
// goroutine that accepted it to the interpreter's own goroutine, which
// is the only place handler bodies ever run (spec §5 "Concurrent
// server requests are serialized through the interpreter's single
// evaluator; there is no data race"). respCh has capacity 1 so the
// interpreter's send of the response never blocks, even when the
// accepting goroutine has already given up waiting for it.
type requestEnvelope struct {
	req    ServerRequest
	respCh chan ServerResponse
}

// ServerRequest is the value passed to a registered HTTP handler.
type ServerRequest struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    string
}

// ServerResponse is what `respond to ... with ...` produces.
type ServerResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// resourceTable owns every open file/process/server handle, closing
// whatever remains open at program termination (spec §5).
type resourceTable struct {
	files   map[ResourceID]*fileResource
	procs   map[ResourceID]*processResource
	servers map[ResourceID]*serverResource
	pending map[ResourceID]chan ServerResponse
}

func newResourceTable() *resourceTable {
	return &resourceTable{
		files:   map[ResourceID]*fileResource{},
		procs:   map[ResourceID]*processResource{},
		servers: map[ResourceID]*serverResource{},
		pending: map[ResourceID]chan ServerResponse{},
	}
}

// registerPending parks a request's response channel under a fresh id so
// `respond to <r> with ...` can find it again once `wait for request ...
// comes from` has handed the request map to script code (see
// execWaitForRequest / execRespond in io.go).
func (rt *resourceTable) registerPending(ch chan ServerResponse) ResourceID {
	id := newResourceID()
	rt.pending[id] = ch
	return id
}

func (rt *resourceTable) takePending(id ResourceID) (chan ServerResponse, bool) {
	ch, ok := rt.pending[id]
	if ok {
		delete(rt.pending, id)
	}
	return ch, ok
}

func newResourceID() ResourceID {
	return ResourceID(uuid.New().String())
}

func (rt *resourceTable) openFile(path string, flag int, perm os.FileMode) (ResourceID, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return "", err
	}
	id := newResourceID()
	rt.files[id] = &fileResource{path: path, file: f}
	return id, nil
}

func (rt *resourceTable) file(id ResourceID) (*fileResource, error) {
	fr, ok := rt.files[id]
	if !ok {
		return nil, fmt.Errorf("unknown file handle")
	}
	if fr.closed {
		return nil, fmt.Errorf("file handle is closed")
	}
	return fr, nil
}

func (rt *resourceTable) closeFile(id ResourceID) error {
	fr, err := rt.file(id)
	if err != nil {
		return err
	}
	fr.closed = true
	return fr.file.Close()
}

func (rt *resourceTable) registerProcess(cmd *exec.Cmd, stdout *bytes.Buffer) ResourceID {
	id := newResourceID()
	rt.procs[id] = &processResource{cmd: cmd, stdout: stdout}
	return id
}

func (rt *resourceTable) process(id ResourceID) (*processResource, error) {
	pr, ok := rt.procs[id]
	if !ok {
		return nil, fmt.Errorf("unknown process handle")
	}
	return pr, nil
}

// output waits for pr's command to exit, on the calling (single
// interpreter) goroutine, and returns everything it wrote to stdout.
// Waiting is idempotent so `read output from` can be issued more than
// once, or after `process ... is running` has already observed exit.
func (pr *processResource) output() (string, error) {
	if !pr.waited {
		pr.waited = true
		pr.waitErr = pr.cmd.Wait()
	}
	return pr.stdout.String(), pr.waitErr
}

func (rt *resourceTable) registerServer(addr string) ResourceID {
	id := newResourceID()
	rt.servers[id] = &serverResource{
		addr:     addr,
		incoming: make(chan requestEnvelope, 32),
		stop:     make(chan struct{}),
	}
	return id
}

func (rt *resourceTable) server(id ResourceID) (*serverResource, error) {
	sr, ok := rt.servers[id]
	if !ok {
		return nil, fmt.Errorf("unknown server handle")
	}
	if sr.closed {
		return nil, fmt.Errorf("server handle is closed")
	}
	return sr, nil
}

// closeAll closes every still-open handle (spec §5 "the interpreter
// closes all still-open handles at program termination").
func (rt *resourceTable) closeAll() {
	for _, fr := range rt.files {
		if !fr.closed {
			fr.closed = true
			fr.file.Close()
		}
	}
	for _, sr := range rt.servers {
		if !sr.closed {
			sr.closed = true
			close(sr.stop)
		}
	}
}
