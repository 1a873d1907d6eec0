// Package mcpadapter exposes the digest pipeline as MCP tools over stdio.
// One process serves one interaction: the first load_document opens a
// session and later loads replace its document.
package mcpadapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
)

const (
	serverName    = "pdf-digest"
	serverVersion = "1.0.0"
)

type Server struct {
	ingest    ports.DocumentIngestor
	summaries ports.SummaryService
	sessions  ports.SessionReader
	maxBytes  int64

	mu        sync.Mutex
	sessionID string
}

func New(ingest ports.DocumentIngestor, summaries ports.SummaryService, sessions ports.SessionReader, maxBytes int64) *Server {
	return &Server{
		ingest:    ingest,
		summaries: summaries,
		sessions:  sessions,
		maxBytes:  maxBytes,
	}
}

// MCPServer registers the tools on a fresh mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	lengths := s.summaries.LengthRange()
	srv.AddTool(mcp.NewTool("load_document",
		mcp.WithDescription("Load a PDF or plain text file and split it into sentence blocks. Replaces any previously loaded document and clears its summary."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document on the local filesystem"),
		),
	), s.loadDocument)
	srv.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List the sentence blocks of the loaded document."),
		mcp.WithNumber("n",
			mcp.Description("Number of blocks to show; 0 or omitted shows all"),
		),
	), s.listBlocks)
	srv.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Generate an abstractive summary of the loaded document."),
		mcp.WithNumber("length",
			mcp.Description(fmt.Sprintf("Target summary length in words, %d to %d (default %d)", lengths.Min, lengths.Max, lengths.Default)),
		),
	), s.summarize)
	srv.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Return the current summary of the loaded document, if any."),
	), s.getSummary)
	return srv
}

// ServeStdio blocks until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) loadDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	upload, err := s.readUpload(strings.TrimSpace(path))
	if err != nil {
		return failureResult(err), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var session *domain.Session
	if s.sessionID == "" {
		session, err = s.ingest.Open(ctx, upload)
	} else {
		session, err = s.ingest.Replace(ctx, s.sessionID, upload)
		if domain.IsKind(err, domain.ErrSessionNotFound) {
			session, err = s.ingest.Open(ctx, upload)
		}
	}
	if err != nil {
		return failureResult(err), nil
	}
	s.sessionID = session.ID

	doc := session.Document
	var b strings.Builder
	fmt.Fprintf(&b, "Loaded %s: %d page(s), %d word(s), %d block(s).", doc.Filename, doc.PageCount, doc.WordCount(), len(doc.Blocks))
	if !doc.Complete {
		fmt.Fprintf(&b, "\nExtraction incomplete:")
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(&b, "\n- %s", d)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := req.GetInt("n", 0)
	if n < 0 {
		return mcp.NewToolResultError("n must be a non-negative integer"), nil
	}
	session, err := s.current(ctx)
	if err != nil {
		return failureResult(err), nil
	}

	blocks := session.Document.Blocks
	visible := domain.VisibleBlocks(blocks, n)
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d block(s).\n", len(visible), len(blocks))
	for idx, block := range visible {
		fmt.Fprintf(&b, "\n%d. %s", idx+1, block)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) summarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := req.GetInt("length", 0)
	if target == 0 {
		target = s.summaries.LengthRange().Default
	}
	id, err := s.currentID()
	if err != nil {
		return failureResult(err), nil
	}

	result, err := s.summaries.Summarize(ctx, id, target)
	if err != nil {
		return failureResult(err), nil
	}
	return mcp.NewToolResultText(formatSummary(result)), nil
}

func (s *Server) getSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.current(ctx)
	if err != nil {
		return failureResult(err), nil
	}
	if session.State != domain.SummaryStateHasSummary || session.Summary == nil {
		return mcp.NewToolResultText("No summary yet. Call summarize first."), nil
	}
	return mcp.NewToolResultText(formatSummary(session.Summary)), nil
}

func (s *Server) readUpload(path string) (domain.Upload, error) {
	if path == "" {
		return domain.Upload{}, domain.WrapError(domain.ErrInvalidInput, "read document", fmt.Errorf("path is required"))
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.Upload{}, domain.WrapError(domain.ErrInvalidInput, "read document", err)
	}
	if info.IsDir() {
		return domain.Upload{}, domain.WrapError(domain.ErrInvalidInput, "read document", fmt.Errorf("%s is a directory", path))
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return domain.Upload{}, domain.WrapError(domain.ErrInvalidInput, "read document", fmt.Errorf("file is %d bytes, limit is %d", info.Size(), s.maxBytes))
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return domain.Upload{}, domain.WrapError(domain.ErrInvalidInput, "read document", err)
	}
	return domain.Upload{Filename: filepath.Base(path), Body: body}, nil
}

func (s *Server) currentID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == "" {
		return "", domain.WrapError(domain.ErrSessionNotFound, "current session", fmt.Errorf("no document loaded, call load_document first"))
	}
	return s.sessionID, nil
}

func (s *Server) current(ctx context.Context) (*domain.Session, error) {
	id, err := s.currentID()
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, id)
}

func formatSummary(result *domain.SummaryResult) string {
	return fmt.Sprintf("%s\n\n(%d words, target %d, %.1fs)", result.Text, result.WordCount(), result.TargetLength, result.Duration.Seconds())
}

func failureResult(err error) *mcp.CallToolResult {
	failure := domain.DescribeError(err)
	return mcp.NewToolResultError(failure.Kind + ": " + failure.Message)
}
