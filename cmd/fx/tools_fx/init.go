package tools_fx

import (
	"os"

	"go.uber.org/fx"

	"rumbo/pkg/tools"
)

var Module = fx.Provide(provideWebSearcher, provideGeocoder, provideImageSearcher)

func provideWebSearcher() tools.WebSearcher {
	return tools.NewTavilyClient(os.Getenv("TAVILY_API_KEY"))
}

func provideGeocoder() tools.Geocoder {
	return tools.NewNominatimClient(os.Getenv("NOMINATIM_URL"))
}

func provideImageSearcher() tools.ImageSearcher {
	return tools.NewOpenverseClient(os.Getenv("OPENVERSE_URL"))
}
