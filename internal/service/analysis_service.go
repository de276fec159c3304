// Package service contains the wallet analysis pipeline: chain detection,
// holding enrichment, personality classification, fortune series generation,
// and result caching.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wallet-fortune/internal/adapter"
	"github.com/wallet-fortune/internal/bazi"
	"github.com/wallet-fortune/internal/kline"
	"github.com/wallet-fortune/internal/models"
	"github.com/wallet-fortune/internal/personality"
	"github.com/wallet-fortune/internal/types"
)

const (
	// dustThresholdUSD is the value below which priced holdings are dropped
	dustThresholdUSD = 0.01

	// forecastHorizonMonths is how many future months get predicted
	forecastHorizonMonths = 6

	// resultIDLength is the length of the short opaque result identifier
	resultIDLength = 10
)

// AnalysisService runs the full wallet analysis pipeline. An unrecognizable
// address is the only fatal failure; every collaborator error downgrades to a
// well-defined fallback so the analysis always completes.
type AnalysisService struct {
	evm       adapter.ChainProvider
	solana    adapter.ChainProvider
	tokens    adapter.TokenInfoProvider
	ai        adapter.AIProvider
	generator *kline.Generator
	forecasts bazi.ForecastTable
	cache     *ResultCache

	now    func() time.Time
	logger zerolog.Logger

	// guards rng and the generator's internal randomness across requests
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAnalysisService wires the pipeline. ai may be nil when no AI backend is
// configured; fallback content is used throughout in that case.
func NewAnalysisService(
	evm adapter.ChainProvider,
	solana adapter.ChainProvider,
	tokens adapter.TokenInfoProvider,
	ai adapter.AIProvider,
	generator *kline.Generator,
	forecasts bazi.ForecastTable,
	cache *ResultCache,
	logger zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		evm:       evm,
		solana:    solana,
		tokens:    tokens,
		ai:        ai,
		generator: generator,
		forecasts: forecasts,
		cache:     cache,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logger.With().Str("component", "analysis_service").Logger(),
	}
}

// Analyze runs the full pipeline for one wallet address. Results are cached
// by normalized address; a warm cache entry is returned as-is.
func (s *AnalysisService) Analyze(ctx context.Context, address string) (*models.AnalysisResult, error) {
	chain := DetectChain(address)
	if chain == types.ChainUnknown {
		return nil, &types.ServiceError{
			Code:    "INVALID_ADDRESS",
			Message: "unrecognized wallet address format",
			Details: map[string]interface{}{"address": address},
		}
	}

	normalized := NormalizeAddress(address, chain)
	if cached := s.cache.GetByAddress(ctx, normalized); cached != nil {
		s.logger.Debug().Str("address", normalized).Msg("analysis served from cache")
		return cached, nil
	}

	provider, err := s.providerFor(chain)
	if err != nil {
		return nil, err
	}

	chainData := s.fetchChainData(ctx, provider, normalized)
	holdings := s.enrichHoldings(ctx, chainData.rawHoldings)

	var totalValueUSD float64
	for _, h := range holdings {
		totalValueUSD += h.ValueUSD
	}
	for i := range holdings {
		if totalValueUSD > 0 {
			holdings[i].PercentOfPortfolio = holdings[i].ValueUSD / totalValueUSD * 100
		}
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].ValueUSD > holdings[j].ValueUSD
	})

	// TODO: wire a real PnL source (e.g. a Moralis-style wallet PnL API);
	// the classifier, series generator, and fallback content already consume
	// pnlPercent so only this assignment changes.
	pnlPercent := 0.0
	pnlUSD := 0.0

	result := personality.Classify(personality.ClassifyInput{
		TxCount30d:    chainData.txCount30d,
		Holdings:      holdings,
		TotalValueUSD: totalValueUSD,
		PnlPercent:    pnlPercent,
		FirstTxDate:   chainData.firstTxDate,
	}, s.now())

	aiContent := s.generateContent(ctx, adapter.ContentRequest{
		Address:       normalized,
		Chain:         chain,
		Tags:          result.Tags,
		Dimensions:    result.Dimensions,
		TopHoldings:   topHoldings(holdings, 5),
		TotalValueUSD: totalValueUSD,
		PnlPercent:    pnlPercent,
	})

	series := s.generateSeries(ctx, kline.Input{
		Holdings:      holdings,
		FirstTxDate:   chainData.firstTxDate,
		TotalValueUSD: totalValueUSD,
		PnlPercent:    pnlPercent,
		TxCount30d:    chainData.txCount30d,
	}, result, pnlPercent)

	reading := bazi.Reading(chainData.firstTxDate, holdings, s.forecasts)

	topPercent := 0.0
	if len(holdings) > 0 {
		topPercent = holdings[0].PercentOfPortfolio
	}

	analysis := &models.AnalysisResult{
		ID:         newResultID(),
		Address:    normalized,
		Chain:      chain,
		AnalyzedAt: s.now().UTC(),
		Portfolio: models.Portfolio{
			TotalValueUSD:     totalValueUSD,
			Holdings:          holdings,
			TopHoldingPercent: topPercent,
		},
		Trading: models.TradingStats{
			TxCount30d:  chainData.txCount30d,
			FirstTxDate: chainData.firstTxDate,
		},
		Pnl: models.PnlStats{
			TotalPnlPercent: pnlPercent,
			TotalPnlUSD:     pnlUSD,
		},
		Personality: result,
		AIContent:   *aiContent,
		Series:      series,
		Bazi:        &reading,
	}

	s.cache.Put(ctx, analysis)
	return analysis, nil
}

// GetResult returns a previously computed analysis while it is still
// cache-resident
func (s *AnalysisService) GetResult(ctx context.Context, id string) (*models.AnalysisResult, error) {
	if result := s.cache.GetByID(ctx, id); result != nil {
		return result, nil
	}
	return nil, &types.ServiceError{
		Code:    "RESULT_NOT_FOUND",
		Message: "analysis result not found or expired",
		Details: map[string]interface{}{"id": id},
	}
}

func (s *AnalysisService) providerFor(chain types.ChainType) (adapter.ChainProvider, error) {
	var provider adapter.ChainProvider
	switch chain {
	case types.ChainEVM:
		provider = s.evm
	case types.ChainSolana:
		provider = s.solana
	}
	if provider == nil {
		return nil, &types.ServiceError{
			Code:    "CHAIN_UNAVAILABLE",
			Message: fmt.Sprintf("no provider configured for chain %s", chain),
		}
	}
	return provider, nil
}

type chainData struct {
	rawHoldings []models.RawHolding
	txCount30d  int
	firstTxDate time.Time
}

// fetchChainData runs the three independent chain lookups concurrently. Each
// failure is logged and replaced by a neutral default so the analysis can
// proceed on partial data.
func (s *AnalysisService) fetchChainData(ctx context.Context, provider adapter.ChainProvider, address string) chainData {
	data := chainData{firstTxDate: s.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		holdings, err := provider.Holdings(gctx, address)
		if err != nil {
			s.logger.Warn().Err(err).Str("address", address).Msg("holdings fetch failed")
			return nil
		}
		data.rawHoldings = holdings
		return nil
	})
	g.Go(func() error {
		count, err := provider.TxCount30d(gctx, address)
		if err != nil {
			s.logger.Warn().Err(err).Str("address", address).Msg("tx count fetch failed")
			return nil
		}
		data.txCount30d = count
		return nil
	})
	g.Go(func() error {
		first, err := provider.FirstTxDate(gctx, address)
		if err != nil {
			s.logger.Warn().Err(err).Str("address", address).Msg("first tx date fetch failed")
			return nil
		}
		data.firstTxDate = first
		return nil
	})
	_ = g.Wait()

	return data
}

// enrichHoldings resolves price and category data for each raw balance.
// Priced dust under one cent is dropped; tokens the pricing provider does not
// know keep a zero value unless they claim a mainstream symbol, which would
// distort the mainstream ratio.
func (s *AnalysisService) enrichHoldings(ctx context.Context, raw []models.RawHolding) []models.Holding {
	holdings := make([]models.Holding, 0, len(raw))

	for _, r := range raw {
		if r.Amount <= 0 {
			continue
		}
		symbol := r.Symbol
		if symbol == "" {
			symbol = "UNKNOWN"
		}

		info, err := s.tokens.TokenInfo(ctx, symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("token info lookup failed, skipping")
			continue
		}

		if info != nil {
			valueUSD := r.Amount * info.PriceUSD
			if valueUSD < dustThresholdUSD {
				continue
			}
			holdings = append(holdings, models.Holding{
				Symbol:        info.Symbol,
				Name:          info.Name,
				Amount:        r.Amount,
				ValueUSD:      valueUSD,
				IsMeme:        info.IsMeme,
				SourceAddress: r.SourceAddress,
			})
			continue
		}

		if personality.IsMainstreamSymbol(symbol) {
			continue
		}
		name := r.Name
		if name == "" {
			name = symbol
		}
		holdings = append(holdings, models.Holding{
			Symbol:        symbol,
			Name:          name,
			Amount:        r.Amount,
			SourceAddress: r.SourceAddress,
		})
	}

	return holdings
}

// generateContent asks the AI collaborator for the description and roast
// line, falling back per-field to deterministic text
func (s *AnalysisService) generateContent(ctx context.Context, req adapter.ContentRequest) *models.AIContent {
	var content *models.AIContent
	if s.ai != nil {
		generated, err := s.ai.WalletContent(ctx, req)
		if err != nil {
			s.logger.Warn().Err(err).Str("address", req.Address).Msg("ai content generation failed")
		} else {
			content = generated
		}
	}
	if content == nil {
		content = &models.AIContent{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if content.Description == "" {
		content.Description = DefaultDescription(req.Tags, req.TotalValueUSD)
	}
	if content.RoastLine == "" {
		content.RoastLine = DefaultRoastLine(req.PnlPercent, s.rng)
	}
	return content
}

// generateSeries builds the fortune series and splices a forecast onto it.
// Forecast failures fall back to the bounded random walk.
func (s *AnalysisService) generateSeries(ctx context.Context, input kline.Input, persona models.PersonalityResult, pnlPercent float64) *models.FortuneSeries {
	s.mu.Lock()
	series := s.generator.Generate(ctx, input)
	s.mu.Unlock()

	recent := recentScores(series, forecastHorizonMonths)
	futureMonths := FutureMonths(s.now(), forecastHorizonMonths)

	var prediction *models.SeriesPrediction
	if s.ai != nil {
		forecast, err := s.ai.SeriesForecast(ctx, adapter.ForecastRequest{
			CurrentScore: series.Summary.CurrentScore,
			Trend:        series.Summary.Trend,
			RecentScores: recent,
			Tags:         persona.Tags,
			PnlPercent:   pnlPercent,
			WalletAge:    persona.Dimensions.WalletAge.Label,
			FutureMonths: futureMonths,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("ai forecast failed, using fallback predictions")
		} else {
			prediction = forecast
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prediction == nil {
		prediction = DefaultPredictions(futureMonths, series.Summary.CurrentScore, s.rng)
	}
	return s.generator.SplicePrediction(series, prediction)
}

func recentScores(series *models.FortuneSeries, n int) []int {
	points := series.Points
	if len(points) > n {
		points = points[len(points)-n:]
	}
	scores := make([]int, 0, len(points))
	for _, p := range points {
		scores = append(scores, p.Score)
	}
	return scores
}

func topHoldings(holdings []models.Holding, n int) []models.Holding {
	if len(holdings) <= n {
		return holdings
	}
	return holdings[:n]
}

// newResultID builds the short opaque identifier results are shared under
func newResultID() string {
	compact := strings.ReplaceAll(uuid.NewString(), "-", "")
	return compact[:resultIDLength]
}
