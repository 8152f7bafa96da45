package server

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"github.com/rpgo/pension-engine/internal/config"
	"github.com/rpgo/pension-engine/internal/domain"
)

type factorRequest struct {
	Group        string          `json:"group"`
	HireEra      string          `json:"hire_era"`
	Age          int             `json:"age"`
	ServiceYears decimal.Decimal `json:"service_years"`
}

type pensionRequest struct {
	Factor        decimal.Decimal `json:"factor"`
	ServiceYears  decimal.Decimal `json:"service_years"`
	AverageSalary decimal.Decimal `json:"average_salary"`
}

type optionRequest struct {
	BasePension              decimal.Decimal     `json:"base_pension"`
	Election                 domain.ElectionSpec `json:"election"`
	MemberAge                int                 `json:"member_age"`
	AccumulatedContributions decimal.Decimal     `json:"accumulated_contributions"`
}

type colaRequest struct {
	StartingPension decimal.Decimal `json:"starting_pension"`
	// Fields left out of COLA take the statutory defaults.
	COLA  *domain.COLAInput `json:"cola"`
	Years int               `json:"years"`
}

type compareRequest struct {
	Base         config.ScenarioInput   `json:"base"`
	Alternatives []config.ScenarioInput `json:"alternatives"`
	// Elections compares the base under every payout election instead of
	// using Alternatives.
	Elections bool `json:"elections"`
}

func (s *Server) handleFactor(ctx *fasthttp.RequestCtx) {
	var req factorRequest
	if !s.decode(ctx, &req) {
		return
	}
	group, err := domain.ParsePlanGroup(req.Group)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	era, err := domain.ParseHireEra(req.HireEra)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	result, err := s.engine.ResolveBenefitFactor(group, req.Age, req.ServiceYears, era)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handlePension(ctx *fasthttp.RequestCtx) {
	var req pensionRequest
	if !s.decode(ctx, &req) {
		return
	}
	result, err := s.engine.CalculateBasePension(req.Factor, req.ServiceYears, req.AverageSalary)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleOption(ctx *fasthttp.RequestCtx) {
	var req optionRequest
	if !s.decode(ctx, &req) {
		return
	}
	election, err := req.Election.Build()
	if err != nil {
		s.fail(ctx, err)
		return
	}
	result, err := s.engine.ApplyPayoutOption(req.BasePension, election, req.MemberAge, req.AccumulatedContributions)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleCOLA(ctx *fasthttp.RequestCtx) {
	var req colaRequest
	if !s.decode(ctx, &req) {
		return
	}
	params := s.engine.Rules.COLA.Defaults()
	if req.COLA != nil {
		params = req.COLA.Over(params)
	}
	rows, err := s.engine.ProjectCOLA(req.StartingPension, params, req.Years)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"parameters": params, "rows": rows})
}

func (s *Server) handleSocialSecurity(ctx *fasthttp.RequestCtx) {
	var profile domain.SocialSecurityProfile
	if !s.decode(ctx, &profile) {
		return
	}
	result, err := s.engine.EstimateSocialSecurity(profile)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

// handleProject runs one scenario. The scenario id is the "id" query
// argument, or the scenario name. A successful result replaces the stored
// one for that id; a failure leaves it in place and returns it alongside the
// error.
func (s *Server) handleProject(ctx *fasthttp.RequestCtx) {
	var in config.ScenarioInput
	if !s.decode(ctx, &in) {
		return
	}
	id := string(ctx.QueryArgs().Peek("id"))
	if id == "" {
		id = in.Name
	}

	params, err := s.parser.Resolve(in)
	if err == nil {
		var result *domain.ProjectionResult
		if result, err = s.engine.ProjectScenario(params); err == nil {
			if id != "" {
				s.results.Store(id, &storedResult{Result: result, UpdatedAt: time.Now().UTC()})
			}
			s.writeJSON(ctx, fasthttp.StatusOK, result)
			return
		}
	}
	s.failWith(ctx, err, s.lastGood(id))
}

func (s *Server) handleGetScenario(ctx *fasthttp.RequestCtx, id string) {
	stored := s.lastGood(id)
	if stored == nil {
		s.writeError(ctx, fasthttp.StatusNotFound, errorBody{Error: "no result for scenario " + id})
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, stored)
}

func (s *Server) lastGood(id string) *storedResult {
	if id == "" {
		return nil
	}
	if v, ok := s.results.Load(id); ok {
		return v.(*storedResult)
	}
	return nil
}

func (s *Server) handleCompare(ctx *fasthttp.RequestCtx) {
	var req compareRequest
	if !s.decode(ctx, &req) {
		return
	}
	base, err := s.parser.Resolve(req.Base)
	if err != nil {
		s.fail(ctx, err)
		return
	}

	cctx, cancel := context.WithTimeout(context.Background(), compareTimeout)
	defer cancel()

	if req.Elections {
		c, err := s.compare.CompareElections(cctx, base)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, c)
		return
	}

	alternatives := make([]domain.ScenarioParameters, 0, len(req.Alternatives))
	for _, in := range req.Alternatives {
		p, err := s.parser.Resolve(in)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		alternatives = append(alternatives, p)
	}
	c, err := s.compare.Compare(cctx, base, alternatives...)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, c)
}
