package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/waymark-resolver/pkg/kit"
	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// StationSearcher is the optional station-search collaborator.
type StationSearcher interface {
	SearchStations(ctx context.Context, query string, max int) ([]resolve.Station, error)
}

// Shared request/response types used by both HTTP and MCP transports.

type resolveReq struct {
	Query string
}

type resolveResponse struct {
	Query   string `json:"query"`
	ID      string `json:"id,omitempty"`
	Matched bool   `json:"matched"`
}

type candidatesReq struct {
	Query string
	Max   int
}

type candidatesResponse struct {
	Query      string           `json:"query"`
	Candidates []resolve.Record `json:"candidates"`
}

type confirmReq struct {
	Query string
	ID    string
}

type confirmResponse struct {
	Saved bool `json:"saved"`
}

type stationsReq struct {
	Query string
	Max   int
}

type stationsResponse struct {
	Query    string            `json:"query"`
	Stations []resolve.Station `json:"stations"`
}

// Endpoints backed by the resolver. "No match" is a normal response, not an
// endpoint error, so both transports can render it without special-casing.

func resolveEndpoint(r *resolve.Resolver) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		id, err := r.Resolve(ctx, req.Query)
		if errors.Is(err, resolve.ErrNoMatch) {
			return resolveResponse{Query: req.Query, Matched: false}, nil
		}
		if err != nil {
			return nil, err
		}
		return resolveResponse{Query: req.Query, ID: id, Matched: true}, nil
	}
}

func candidatesEndpoint(r *resolve.Resolver) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*candidatesReq)
		records, err := r.ResolveCandidates(ctx, req.Query, req.Max)
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []resolve.Record{}
		}
		return candidatesResponse{Query: req.Query, Candidates: records}, nil
	}
}

func confirmEndpoint(r *resolve.Resolver) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*confirmReq)
		if err := r.Confirm(ctx, req.Query, req.ID); err != nil {
			return nil, err
		}
		return confirmResponse{Saved: true}, nil
	}
}

func stationsEndpoint(s StationSearcher) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*stationsReq)
		if s == nil {
			return nil, fmt.Errorf("station search not configured")
		}
		stations, err := s.SearchStations(ctx, req.Query, req.Max)
		if err != nil {
			return nil, err
		}
		if stations == nil {
			stations = []resolve.Station{}
		}
		return stationsResponse{Query: req.Query, Stations: stations}, nil
	}
}
