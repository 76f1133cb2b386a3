package server

import (
	"context"
	"encoding/json"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/types"
)

const (
	mcpServerName    = "job-matcher"
	mcpServerVersion = "0.1.0"
)

// MatchJobsParams defines the arguments for the match_jobs tool
type MatchJobsParams struct {
	TextDescription string `json:"text_description" jsonschema:"Free-text description of the job you are looking for"`
	Skills          string `json:"skills,omitempty" jsonschema:"Desired skills, free text"`
	ExperienceLevel string `json:"experience_level,omitempty" jsonschema:"Experience level, e.g. Junior or Senior"`
	Location        string `json:"location,omitempty" jsonschema:"Preferred location, or any"`
	JobType         string `json:"job_type,omitempty" jsonschema:"Job type, e.g. Full-time, or any"`
	SalaryRange     string `json:"salary_range,omitempty" jsonschema:"Salary constraint, e.g. under 50000 or between 30000 and 60000"`
	Debug           bool   `json:"debug,omitempty" jsonschema:"Include the per-posting score breakdowns"`
}

func (p *MatchJobsParams) query() *types.MatchQuery {
	return &types.MatchQuery{
		TextDescription: p.TextDescription,
		Skills:          p.Skills,
		ExperienceLevel: p.ExperienceLevel,
		Location:        p.Location,
		JobType:         p.JobType,
		SalaryRange:     p.SalaryRange,
	}
}

// newMCPServer builds the MCP server exposing the match_jobs tool.
func (s *Server) newMCPServer() *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    mcpServerName,
		Version: mcpServerVersion,
	}, nil)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "match_jobs",
		Description: "Rank the stored job postings against a free-text requirement and optional filters",
	}, s.matchJobsTool)

	return server
}

// newMCPHandler serves the MCP server over streamable HTTP.
func (s *Server) newMCPHandler() http.Handler {
	server := s.newMCPServer()
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)
}

func (s *Server) matchJobsTool(ctx context.Context, _ *sdkmcp.CallToolRequest, params *MatchJobsParams) (*sdkmcp.CallToolResult, any, error) {
	query := params.query()
	if err := query.Validate(); err != nil {
		return errorResult(msgMissingRequirements), nil, nil
	}

	resp, err := s.match(ctx, query, params.Debug)
	if err != nil {
		s.logger.Warn("match_jobs failed", zap.Error(err))
		return errorResult("Error matching jobs: " + err.Error()), nil, nil
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(body)), nil, nil
}

// textResult returns a text-only tool result
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

func errorResult(msg string) *sdkmcp.CallToolResult {
	res := textResult(msg)
	res.IsError = true
	return res
}
