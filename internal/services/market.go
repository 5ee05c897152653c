// Yahoo Finance [MarketService] implementation
//
// Uses the public chart and search endpoints, which need no API key. Requests
// are rate limited so watchlist-sized quote batches stay under Yahoo's
// unauthenticated throttling.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/stockmind/internal/shared"
	"golang.org/x/time/rate"
)

const defaultYahooBaseURL string = "https://query1.finance.yahoo.com"

// Yahoo throttles anonymous clients hard; 5 req/s keeps a 30-symbol
// watchlist refresh under their limit.
const yahooRequestsPerSecond = 5

// indexSymbols are the major US indices shown in the market overview.
var indexSymbols = []struct {
	symbol string
	name   string
}{
	{"^GSPC", "S&P 500"},
	{"^DJI", "Dow Jones"},
	{"^IXIC", "NASDAQ"},
}

// chartResponse mirrors the v8 chart endpoint envelope.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol           string  `json:"symbol"`
				ShortName        string  `json:"shortName"`
				LongName         string  `json:"longName"`
				FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// searchResponse mirrors the v1 search endpoint, used for headlines only.
type searchResponse struct {
	News []struct {
		Title       string `json:"title"`
		Publisher   string `json:"publisher"`
		Link        string `json:"link"`
		PublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// YahooService implements [MarketService] against Yahoo Finance.
type YahooService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYahooService creates a new Yahoo Finance service instance.
func NewYahooService(baseURL string) *YahooService {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}

	return &YahooService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(yahooRequestsPerSecond), 1),
	}
}

// Name returns the provider name.
func (y *YahooService) Name() string {
	return "Yahoo Finance"
}

func (y *YahooService) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stockmind/1.0)")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: yahoo finance returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// chart fetches daily candles for a symbol over the given range.
func (y *YahooService) chart(ctx context.Context, symbol, period string) (*chartResponse, error) {
	endpoint := fmt.Sprintf("/v8/finance/chart/%s?range=%s&interval=1d", url.PathEscape(symbol), period)

	var decoded chartResponse
	if err := y.doRequest(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}

	if decoded.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", shared.ErrQuoteUnavailable, symbol, decoded.Chart.Error.Description)
	}
	if len(decoded.Chart.Result) == 0 || len(decoded.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrQuoteUnavailable, symbol)
	}

	return &decoded, nil
}

// closes extracts the non-null daily closes from a chart response.
func closes(decoded *chartResponse) []float64 {
	candles := decoded.Chart.Result[0].Indicators.Quote[0]

	var prices []float64
	for _, close := range candles.Close {
		if close != nil {
			prices = append(prices, *close)
		}
	}
	return prices
}

// Quotes fetches current quotes for the given symbols. Symbols with no price
// data are skipped; the error is non-nil only when every symbol fails.
func (y *YahooService) Quotes(ctx context.Context, symbols []string) (map[string]*Quote, error) {
	quotes := make(map[string]*Quote, len(symbols))

	var lastErr error
	for _, symbol := range symbols {
		quote, err := y.quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return quotes, ctx.Err()
			}
			lastErr = err
			continue
		}
		quotes[quote.Symbol] = quote
	}

	if len(quotes) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return quotes, nil
}

func (y *YahooService) quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	decoded, err := y.chart(ctx, symbol, "5d")
	if err != nil {
		return nil, err
	}

	prices := closes(decoded)
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrQuoteUnavailable, symbol)
	}

	current := prices[len(prices)-1]
	prev := current
	if len(prices) > 1 {
		prev = prices[len(prices)-2]
	}

	change := current - prev
	changePct := 0.0
	if prev != 0 {
		changePct = change / prev * 100
	}

	quote := &Quote{
		Symbol:    symbol,
		Price:     round2(current),
		PrevClose: round2(prev),
		Change:    round2(change),
		ChangePct: round2(changePct),
	}

	candles := decoded.Chart.Result[0].Indicators.Quote[0]
	if n := len(candles.Open); n > 0 && candles.Open[n-1] != nil {
		quote.Open = round2(*candles.Open[n-1])
	}
	if n := len(candles.High); n > 0 && candles.High[n-1] != nil {
		quote.High = round2(*candles.High[n-1])
	}
	if n := len(candles.Low); n > 0 && candles.Low[n-1] != nil {
		quote.Low = round2(*candles.Low[n-1])
	}
	if n := len(candles.Volume); n > 0 && candles.Volume[n-1] != nil {
		quote.Volume = *candles.Volume[n-1]
	}

	return quote, nil
}

// Detail fetches a month of daily closes and derives moving averages and
// volatility for the research prompt.
func (y *YahooService) Detail(ctx context.Context, symbol string) (*StockDetail, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	decoded, err := y.chart(ctx, symbol, "1mo")
	if err != nil {
		return nil, err
	}

	prices := closes(decoded)
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrQuoteUnavailable, symbol)
	}

	current := prices[len(prices)-1]
	monthAgo := prices[0]
	monthChange := 0.0
	if monthAgo != 0 {
		monthChange = (current - monthAgo) / monthAgo * 100
	}

	meta := decoded.Chart.Result[0].Meta
	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}
	if name == "" {
		name = symbol
	}

	return &StockDetail{
		Symbol:           symbol,
		Name:             name,
		Price:            round2(current),
		MonthChangePct:   round2(monthChange),
		SMA5:             round2(sma(prices, 5)),
		SMA20:            round2(sma(prices, 20)),
		Volatility:       round2(volatility(prices)),
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
	}, nil
}

// News fetches up to five recent headlines for a symbol.
func (y *YahooService) News(ctx context.Context, symbol string) ([]NewsItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("/v1/finance/search?q=%s&newsCount=5&quotesCount=0", url.QueryEscape(symbol))

	var decoded searchResponse
	if err := y.doRequest(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, len(decoded.News))
	for _, entry := range decoded.News {
		if len(items) == 5 {
			break
		}
		items = append(items, NewsItem{
			Title:     entry.Title,
			Publisher: entry.Publisher,
			Link:      entry.Link,
			Published: time.Unix(entry.PublishTime, 0).UTC(),
		})
	}

	return items, nil
}

// Overview fetches quotes for the major US indices. Indices that fail to
// quote are skipped.
func (y *YahooService) Overview(ctx context.Context) ([]IndexQuote, error) {
	var overview []IndexQuote
	for _, index := range indexSymbols {
		quote, err := y.quote(ctx, index.symbol)
		if err != nil {
			if ctx.Err() != nil {
				return overview, ctx.Err()
			}
			continue
		}
		overview = append(overview, IndexQuote{
			Symbol:    index.symbol,
			Name:      index.name,
			Value:     quote.Price,
			ChangePct: quote.ChangePct,
		})
	}
	return overview, nil
}

// sma returns the simple moving average of the last window prices, or the
// latest price when history is shorter than the window.
func sma(prices []float64, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < window {
		return prices[len(prices)-1]
	}

	sum := 0.0
	for _, price := range prices[len(prices)-window:] {
		sum += price
	}
	return sum / float64(window)
}

// volatility returns the standard deviation of daily returns, in percent.
func volatility(prices []float64) float64 {
	if len(prices) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * 100
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
