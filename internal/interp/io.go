package interp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wflang/wfl/internal/ast"
)

// requestPollInterval bounds how long execWaitForRequest sleeps between
// deadline checks while no request has arrived yet.
const requestPollInterval = 20 * time.Millisecond

// buildRequestMap renders an inbound HTTP request as the map value both
// RegisterHandlerStatement's push-based handler body and
// WaitForRequestStatement's pull-based form bind their request name to.
func buildRequestMap(req ServerRequest) Value {
	reqMap := Map()
	reqMap.Map.Set("method", Text(req.Method))
	reqMap.Map.Set("path", Text(req.Path))
	reqMap.Map.Set("body", Text(req.Body))
	headerJSON, _ := json.Marshal(req.Headers)
	reqMap.Map.Set("headersJSON", Text(string(headerJSON)))
	return reqMap
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (in *Interpreter) execOpenFile(n *ast.OpenFileStatement, env *Environment) error {
	path, err := in.evalText(n.Path, env)
	if err != nil {
		return err
	}
	id, err := in.resources.openFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return in.runtimeErr(n, "%s", err)
	}
	env.Define(n.Name, Value{Kind: KindFileHandle, Handle: id}, false)
	return nil
}

func (in *Interpreter) execReadFile(n *ast.ReadFileStatement, env *Environment) error {
	src, err := in.eval(n.Source, env)
	if err != nil {
		return err
	}
	var content string
	switch src.Kind {
	case KindFileHandle:
		fr, rerr := in.resources.file(src.Handle)
		if rerr != nil {
			return in.runtimeErr(n, "%s", rerr)
		}
		data, rerr := io.ReadAll(fr.file)
		if rerr != nil {
			return in.runtimeErr(n, "%s", rerr)
		}
		content = string(data)
	case KindProcessHandle:
		pr, rerr := in.resources.process(src.Handle)
		if rerr != nil {
			return in.runtimeErr(n, "%s", rerr)
		}
		v, rerr := in.evalReadProcessOutput(n, pr)
		if rerr != nil {
			return rerr
		}
		content = v.Text
	default:
		data, rerr := os.ReadFile(src.String())
		if rerr != nil {
			return in.runtimeErr(n, "%s", rerr)
		}
		content = string(data)
	}
	if err := in.checkDeadline(n); err != nil {
		return err
	}
	env.Define(n.Name, Text(content), false)
	return nil
}

func (in *Interpreter) execWriteFile(n *ast.WriteFileStatement, env *Environment) error {
	fileVal, err := in.eval(n.File, env)
	if err != nil {
		return err
	}
	content, err := in.evalText(n.Content, env)
	if err != nil {
		return err
	}
	if fileVal.Kind != KindFileHandle {
		return in.runtimeErr(n, "not a file handle")
	}
	fr, err := in.resources.file(fileVal.Handle)
	if err != nil {
		return in.runtimeErr(n, "%s", err)
	}
	if !n.Append {
		if _, err := fr.file.Seek(0, io.SeekStart); err != nil {
			return in.runtimeErr(n, "%s", err)
		}
		if err := fr.file.Truncate(0); err != nil {
			return in.runtimeErr(n, "%s", err)
		}
	}
	if _, err := fr.file.WriteString(content); err != nil {
		return in.runtimeErr(n, "%s", err)
	}
	return nil
}

func (in *Interpreter) evalListFiles(n *ast.ListFilesExpr, env *Environment) (Value, error) {
	dir, err := in.evalText(n.Directory, env)
	if err != nil {
		return Value{}, err
	}
	var ext string
	if n.Extension != nil {
		ext, err = in.evalText(n.Extension, env)
		if err != nil {
			return Value{}, err
		}
	}

	var paths []string
	walker := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !n.Recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if ext != "" && filepath.Ext(path) != ext {
			return nil
		}
		paths = append(paths, path)
		return nil
	}
	if err := filepath.WalkDir(dir, walker); err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	elems := make([]Value, len(paths))
	for i, p := range paths {
		elems[i] = Text(p)
	}
	return List(elems), nil
}

func (in *Interpreter) evalReadContent(n *ast.ReadContentExpr, env *Environment) (Value, error) {
	src, err := in.eval(n.Source, env)
	if err != nil {
		return Value{}, err
	}
	if src.Kind == KindFileHandle {
		fr, rerr := in.resources.file(src.Handle)
		if rerr != nil {
			return Value{}, in.runtimeErr(n, "%s", rerr)
		}
		data, rerr := io.ReadAll(fr.file)
		if rerr != nil {
			return Value{}, in.runtimeErr(n, "%s", rerr)
		}
		return Text(string(data)), nil
	}
	if src.Kind == KindProcessHandle {
		pr, rerr := in.resources.process(src.Handle)
		if rerr != nil {
			return Value{}, in.runtimeErr(n, "%s", rerr)
		}
		return in.evalReadProcessOutput(n, pr)
	}
	data, rerr := os.ReadFile(src.String())
	if rerr != nil {
		return Value{}, in.runtimeErr(n, "%s", rerr)
	}
	return Text(string(data)), nil
}

func (in *Interpreter) evalHeaderAccess(n *ast.HeaderAccessExpr, env *Environment) (Value, error) {
	target, err := in.eval(n.Target, env)
	if err != nil {
		return Value{}, err
	}
	name, err := in.evalText(n.Name, env)
	if err != nil {
		return Value{}, err
	}
	if target.Kind != KindMap {
		return Value{}, in.runtimeErr(n, "header access requires a request/response map")
	}
	if v, ok := target.Map.Entries[name]; ok {
		return v, nil
	}
	return Null(), nil
}

func (in *Interpreter) evalSpawnProcess(n *ast.SpawnProcessExpr, env *Environment) (Value, error) {
	command, err := in.evalText(n.Command, env)
	if err != nil {
		return Value{}, err
	}
	var args []string
	if n.Arguments != nil {
		av, err := in.eval(n.Arguments, env)
		if err != nil {
			return Value{}, err
		}
		if av.Kind == KindList {
			for _, e := range av.List.Elements {
				args = append(args, e.String())
			}
		}
	}
	cmd := exec.Command(command, args...)
	stdout := &bytes.Buffer{}
	cmd.Stdout = stdout
	if err := cmd.Start(); err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	// cmd.Wait is deferred to the statement that next needs the
	// process's exit (read output from), which matches the
	// cooperative model's own rule that only I/O-bearing statements may
	// suspend the single evaluator (spec §5) — no separate goroutine
	// touches the resource table.
	id := in.resources.registerProcess(cmd, stdout)
	return Value{Kind: KindProcessHandle, Handle: id}, nil
}

// evalReadProcessOutput implements `read output from <process>`,
// waiting for the process to exit on the interpreter's own goroutine
// and returning everything it wrote to stdout.
func (in *Interpreter) evalReadProcessOutput(n ast.Node, pr *processResource) (Value, error) {
	out, err := pr.output()
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	return Text(out), nil
}

// execListen starts an HTTP server backed by net/http, supervised
// through an errgroup so the serving goroutine's error surfaces the
// same way a synchronous I/O failure would (spec §5's single-evaluator
// serialization: requests are queued into a channel and drained by the
// interpreter's own execution, never handled concurrently with user code).
func (in *Interpreter) execListen(n *ast.ListenStatement, env *Environment) error {
	port, err := in.evalNumber(n.Port, env)
	if err != nil {
		return err
	}
	addr := ":" + strconv.Itoa(int(port))
	id := in.resources.registerServer(addr)
	sr, _ := in.resources.server(id)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		headers := map[string]string{}
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}
		req := ServerRequest{Method: r.Method, Path: r.URL.Path, Headers: headers, Body: string(body)}
		envl := requestEnvelope{req: req, respCh: make(chan ServerResponse, 1)}

		select {
		case sr.incoming <- envl:
		case <-sr.stop:
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		case <-r.Context().Done():
			return
		}

		var resp ServerResponse
		select {
		case resp = <-envl.respCh:
		case <-sr.stop:
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		case <-r.Context().Done():
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		status := resp.Status
		if status == 0 {
			status = 200
		}
		w.WriteHeader(status)
		w.Write([]byte(resp.Body))
	})

	server := &http.Server{Addr: addr, Handler: mux}
	g, _ := errgroup.WithContext(in.ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	go func() {
		<-sr.stop
		server.Close()
	}()

	if n.Name != "" {
		env.Define(n.Name, Value{Kind: KindServerHandle, Handle: id}, false)
	}
	return nil
}

// dispatchServerRequests drains every registered server's pending
// requests and runs their handlers, all on the caller's goroutine.
// ForeverLoop and MainLoop call this once per iteration so an HTTP
// server script's own `main loop`/`repeat forever` body is what pumps
// the request queue — handler bodies therefore never run concurrently
// with the rest of the script (spec §5).
func (in *Interpreter) dispatchServerRequests() {
	for _, sr := range in.resources.servers {
		if sr.closed {
			continue
		}
	drain:
		for {
			select {
			case envl := <-sr.incoming:
				resp := ServerResponse{Status: 404, Body: "no handler registered"}
				if len(sr.handlers) > 0 {
					resp = sr.handlers[0](envl.req)
				}
				envl.respCh <- resp
			default:
				break drain
			}
		}
	}
}

func (in *Interpreter) execRespond(n *ast.RespondStatement, env *Environment) error {
	reqVal, err := in.eval(n.Request, env)
	if err != nil {
		return err
	}
	bodyVal, err := in.eval(n.Body, env)
	if err != nil {
		return err
	}
	status := 200
	if n.Status != nil {
		s, err := in.evalNumber(n.Status, env)
		if err != nil {
			return err
		}
		status = int(s)
	}
	if reqVal.Kind != KindMap {
		return nil
	}
	// `wait for request ... comes from <server>` parks the request's
	// response channel under "requestId"; respond delivers straight to
	// it since nothing else will dispatch this request's response.
	if idVal, ok := reqVal.Map.Entries["requestId"]; ok {
		if ch, found := in.resources.takePending(ResourceID(idVal.Text)); found {
			ch <- ServerResponse{Status: status, Body: bodyVal.String()}
		}
		return nil
	}
	// Otherwise this request map came from a RegisterHandlerStatement
	// handler body, which renders the response into the map's own
	// entries rather than a network round-trip: the handler body runs
	// inline on the interpreter's single evaluator (dispatchServerRequests),
	// not inside the net/http goroutine, and reads these entries back out
	// once execStmtsIn returns (see execRegisterHandler).
	reqVal.Map.Set("responseBody", bodyVal)
	reqVal.Map.Set("responseStatus", Number(float64(status)))
	return nil
}

// execWaitForRequest implements `wait for request <name> comes from
// <server>`, the pull-based counterpart to RegisterHandlerStatement: it
// blocks the calling statement (checking the deadline between polls, the
// same discipline every other suspending statement here follows) until
// one request is available, then binds it to name.
func (in *Interpreter) execWaitForRequest(n *ast.WaitForRequestStatement, env *Environment) error {
	serverVal, err := in.eval(n.Server, env)
	if err != nil {
		return err
	}
	if serverVal.Kind != KindServerHandle {
		return in.runtimeErr(n, "not a server handle")
	}
	sr, err := in.resources.server(serverVal.Handle)
	if err != nil {
		return in.runtimeErr(n, "%s", err)
	}

	var envl requestEnvelope
	for {
		if err := in.checkDeadline(n); err != nil {
			return err
		}
		select {
		case envl = <-sr.incoming:
		case <-sr.stop:
			return in.runtimeErr(n, "server is closed")
		case <-in.ctx.Done():
			return in.runtimeErr(n, "Execution exceeded timeout")
		case <-time.After(requestPollInterval):
			continue
		}
		break
	}

	reqMap := buildRequestMap(envl.req)
	id := in.resources.registerPending(envl.respCh)
	reqMap.Map.Set("requestId", Text(string(id)))
	env.Define(n.Name, reqMap, false)
	return nil
}

func (in *Interpreter) execRegisterHandler(n *ast.RegisterHandlerStatement, env *Environment) error {
	serverVal, err := in.eval(n.Server, env)
	if err != nil {
		return err
	}
	if serverVal.Kind != KindServerHandle {
		return in.runtimeErr(n, "not a server handle")
	}
	sr, err := in.resources.server(serverVal.Handle)
	if err != nil {
		return in.runtimeErr(n, "%s", err)
	}
	body := n.Body
	requestName := n.Request
	sr.handlers = append(sr.handlers, func(req ServerRequest) ServerResponse {
		handlerEnv := NewEnvironment(env)
		reqMap := buildRequestMap(req)
		if requestName != "" {
			handlerEnv.Define(requestName, reqMap, false)
		}
		if _, err := in.execStmtsIn(body, handlerEnv); err != nil {
			return ServerResponse{Status: 500, Body: err.Error()}
		}
		status := 200
		respBody := ""
		if sv, ok := reqMap.Map.Entries["responseStatus"]; ok {
			status = int(sv.Number)
		}
		if bv, ok := reqMap.Map.Entries["responseBody"]; ok {
			respBody = bv.String()
		}
		return ServerResponse{Status: status, Body: respBody}
	})
	return nil
}
