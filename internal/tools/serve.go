package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Request is one line-delimited JSON request.
type Request struct {
	ID   int             `json:"id"`
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is one line-delimited JSON response.
type Response struct {
	ID     int    `json:"id"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Tools  []Tool `json:"tools,omitempty"`
}

// Server speaks line-delimited JSON over a reader/writer pair, one
// request per line, one response per line. Intended for stdio with a
// coding assistant as the peer.
type Server struct {
	set *Set
}

// NewServer creates a server over the tool set.
func NewServer(set *Set) *Server {
	return &Server{set: set}
}

// Serve processes requests until EOF. Malformed lines produce an error
// response with id 0 instead of terminating the session.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := enc.Encode(Response{Error: fmt.Sprintf("malformed request: %v", err)}); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(s.handle(req)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handle(req Request) Response {
	resp := Response{ID: req.ID}
	if req.Tool == "list_tools" {
		resp.Tools = s.set.Tools()
		return resp
	}
	var args Args
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &args); err != nil {
			resp.Error = fmt.Sprintf("malformed args: %v", err)
			return resp
		}
	}
	result, err := s.set.Invoke(req.Tool, args)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = result
	return resp
}
