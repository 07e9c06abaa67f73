package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"fortio.org/log"
	"github.com/praetorian-inc/scanutil/pkg/enum"
	"github.com/praetorian-inc/scanutil/pkg/scanner"
	"github.com/praetorian-inc/scanutil/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server answers scan requests read as NDJSON from in, one response line per
// request. The catalog is loaded once and shared by every request.
type Server struct {
	catalog  []*types.Signature
	strategy scanner.Strategy
	encoder  *json.Encoder
	decoder  *json.Decoder
}

// NewServer creates a new streaming server
func NewServer(catalog []*types.Signature, strategy scanner.Strategy, in io.Reader, out io.Writer) *Server {
	return &Server{
		catalog:  catalog,
		strategy: strategy,
		encoder:  json.NewEncoder(out),
		decoder:  json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run starts the server main loop. It returns nil when the input ends or a
// "close" request arrives, and the context error on cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	log.LogVf("serve: %s request", req.Type)
	switch req.Type {
	case "scan":
		s.handleScan(req.Payload)
	case "scan_file":
		s.handleScanFile(req.Payload)
	case "scan_dir":
		s.handleScanDir(ctx, req.Payload)
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{
		Version:    Version,
		Strategy:   s.strategy.String(),
		Signatures: len(s.catalog),
	})
}

func (s *Server) handleScan(payload json.RawMessage) {
	var p ScanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan", err.Error())
		return
	}

	s.send("scan", scanner.ScanBytes(p.Name, []byte(p.Content), s.catalog, s.strategy))
}

func (s *Server) handleScanFile(payload json.RawMessage) {
	var p ScanFilePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_file", err.Error())
		return
	}

	d, err := scanner.ScanFile(p.Path, s.catalog, scanner.FileOptions{Strategy: s.strategy})
	if err != nil {
		s.sendError("scan_file", err.Error())
		return
	}
	s.send("scan_file", d)
}

func (s *Server) handleScanDir(ctx context.Context, payload json.RawMessage) {
	var p ScanDirPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_dir", err.Error())
		return
	}

	result, err := scanner.ScanDirectory(ctx, p.Path, s.catalog, scanner.Options{
		Strategy:       s.strategy,
		MaxConcurrency: p.MaxConcurrency,
		Prefilter:      p.Prefilter,
		Enum:           enum.Config{Recursive: p.Recursive},
	})
	if err != nil {
		s.sendError("scan_dir", err.Error())
		return
	}
	data := ScanDirData{Stats: result.Stats, Files: make([]FileResult, 0, len(result.Files))}
	for _, f := range result.Files {
		fr := FileResult{Path: f.Path, Detection: f.Detection}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		data.Files = append(data.Files, fr)
	}
	s.send("scan_dir", data)
}

func (s *Server) send(reqType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(reqType, err.Error())
		return
	}
	if err := s.encoder.Encode(Response{Success: true, Type: reqType, Data: data}); err != nil {
		log.Errf("serve: writing %s response: %v", reqType, err)
	}
}

func (s *Server) sendError(reqType, msg string) {
	if err := s.encoder.Encode(Response{Success: false, Type: reqType, Error: msg}); err != nil {
		log.Errf("serve: writing %s error: %v", reqType, err)
	}
}
