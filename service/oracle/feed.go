package oracle

import (
	"context"
	"fmt"
	"strings"

	"lendcore/core"
	"lendcore/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
)

type httpFeed struct {
	endpoint string
}

// NewFeed price feed served over http
//
//	GET {endpoint}/api/prices?oracles=a,b -> [{"oracle_id","price","confidence","observed_at"}]
func NewFeed(endpoint string) core.IPriceFeed {
	return &httpFeed{endpoint: strings.TrimSuffix(endpoint, "/")}
}

func (f *httpFeed) Pull(ctx context.Context, oracleIDs []string) ([]*core.OracleReading, error) {
	url := fmt.Sprintf("%s/api/prices", f.endpoint)
	logger.FromContext(ctx).Debugln("pull prices:", url)

	resp, err := resthttp.Request(ctx).
		SetQueryParam("oracles", strings.Join(oracleIDs, ",")).
		Get(url)
	if err != nil {
		return nil, err
	}

	var readings []*core.OracleReading
	if err := resthttp.ParseResponse(resp, &readings); err != nil {
		return nil, err
	}

	return readings, nil
}
