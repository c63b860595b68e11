// Command plan_preview prints the prompt the server would send for a trip and,
// with -send, the model's answer parsed into itinerary sections.
//
//	go run ./scripts -destination Paris -start 2025-06-01 -end 2025-06-05 -hotel -send
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/go-trip-planner-ai/config"
	generativeAI "github.com/FACorreiaa/go-trip-planner-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var (
	destination = flag.String("destination", "Paris", "destination city")
	origin      = flag.String("origin", "", "origin city, required with -flight")
	start       = flag.String("start", time.Now().AddDate(0, 1, 0).Format(time.DateOnly), "start date (YYYY-MM-DD)")
	end         = flag.String("end", time.Now().AddDate(0, 1, 3).Format(time.DateOnly), "end date (YYYY-MM-DD)")
	adults      = flag.Int("adults", 2, "adults")
	children    = flag.Int("children", 0, "children")
	prefs       = flag.String("preferences", "", "free-text preferences")
	budget      = flag.String("budget", "", "budget, e.g. 1500 EUR")
	needsHotel  = flag.Bool("hotel", false, "include the accommodation section")
	needsFlight = flag.Bool("flight", false, "include the flight section")
	send        = flag.Bool("send", false, "send the prompt to the configured model")
)

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	req := types.TripRequest{
		Origin:      *origin,
		Destination: *destination,
		StartDate:   *start,
		EndDate:     *end,
		Travelers:   types.Travelers{Adults: *adults, Children: *children},
		Preferences: *prefs,
		Budget:      *budget,
		NeedsHotel:  *needsHotel,
		NeedsFlight: *needsFlight,
	}
	if err := itinerary.CheckDates(req); err != nil {
		log.Fatalf("invalid dates: %v", err)
	}

	prompt := itinerary.BuildPrompt(req, nil, nil)
	fmt.Println(prompt)
	if !*send {
		return
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()
	llm, err := generativeAI.NewLLMClient(ctx, cfg.LLM, slog.Default())
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}

	completion, err := llm.Complete(ctx, generativeAI.CompletionRequest{
		System:      itinerary.SystemInstruction,
		Prompt:      prompt,
		Temperature: itinerary.DefaultTemperature,
		MaxTokens:   itinerary.DefaultMaxTokens,
	})
	if err != nil {
		log.Fatalf("completion: %v", err)
	}
	fmt.Fprintf(os.Stderr, "\n%s/%s: %d tokens in %s\n\n", llm.Provider(), completion.Model, completion.TotalTokens, completion.Latency)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(itinerary.ParseItinerary(completion.Text, itinerary.NewLayout(req, nil, nil))); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
