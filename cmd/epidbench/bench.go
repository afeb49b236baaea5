/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/epid/config"
	"github.com/IBM/epid/epid"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

type result struct {
	RevocationListSize int
	Sign               time.Duration
	Verify             time.Duration
	SignatureSize      int
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, token := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid revocation list size %q", token)
		}
		if n < 0 {
			return nil, errors.Errorf("revocation list size must not be negative, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// run joins one platform per revoked member of the largest list, revokes each of
// them through one of its signatures, and times one signature and one verification
// by an honest platform against each of the configured list sizes.
func run(conf config.Config, logger epid.Logger) ([]result, error) {
	c, err := conf.AlgebraCurve()
	if err != nil {
		return nil, err
	}

	issuer, err := epid.NewIssuer(c, rand.Reader)
	if err != nil {
		return nil, err
	}
	issuer.Logger = logger
	pp := issuer.PublicParameters()

	sizes := append([]int{}, conf.Bench.RevocationListSizes...)
	sort.Ints(sizes)

	var maxSize int
	if len(sizes) > 0 {
		maxSize = sizes[len(sizes)-1]
	}

	logger.Infof("Building a revocation list of %d entries on %s", maxSize, c.Name)

	msg := []byte(conf.Bench.Message)

	rl := make(epid.RevocationList, 0, maxSize)
	for i := 0; i < maxSize; i++ {
		p, err := joinPlatform(issuer)
		if err != nil {
			return nil, errors.Wrapf(err, "failed joining revoked platform %d", i)
		}
		sig, err := p.Sign(msg, nil, rand.Reader)
		if err != nil {
			return nil, err
		}
		rl = append(rl, epid.RevocationEntryFromSignature(sig))
	}

	p, err := joinPlatform(issuer)
	if err != nil {
		return nil, err
	}
	p.Workers = conf.Workers
	p.Logger = logger

	v := epid.NewVerifier(pp)
	v.Workers = conf.Workers
	v.Logger = logger

	results := make([]result, 0, len(sizes))
	for _, n := range sizes {
		start := time.Now()
		sig, err := p.Sign(msg, rl[:n], rand.Reader)
		if err != nil {
			return nil, err
		}
		signTime := time.Since(start)

		start = time.Now()
		if err := v.Verify(sig, msg, rl[:n]); err != nil {
			return nil, errors.Wrapf(err, "signature against %d entries does not verify", n)
		}
		verifyTime := time.Since(start)

		logger.Debugf("Revocation list of %d entries: sign %v, verify %v", n, signTime, verifyTime)

		results = append(results, result{
			RevocationListSize: n,
			Sign:               signTime,
			Verify:             verifyTime,
			SignatureSize:      len(sig.Bytes(c)),
		})
	}

	return results, nil
}

func joinPlatform(issuer *epid.Issuer) (*epid.Platform, error) {
	p := epid.NewPlatform(issuer.PublicParameters())

	req, err := p.BeginJoin(rand.Reader)
	if err != nil {
		return nil, err
	}

	resp, err := issuer.RespondJoin(req, rand.Reader)
	if err != nil {
		return nil, err
	}

	if _, err := p.CompleteJoin(resp); err != nil {
		return nil, err
	}

	return p, nil
}

func renderChart(path string, curve string, results []result) error {
	xLabels := make([]string, len(results))
	signItems := make([]opts.BarData, len(results))
	verifyItems := make([]opts.BarData, len(results))
	for i, r := range results {
		xLabels[i] = strconv.Itoa(r.RevocationListSize)
		signItems[i] = opts.BarData{Value: float64(r.Sign.Microseconds()) / 1000}
		verifyItems[i] = opts.BarData{Value: float64(r.Verify.Microseconds()) / 1000}
	}

	title := fmt.Sprintf("EPID sign and verify on %s", curve)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "milliseconds per revocation list size"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("sign", signItems).
		AddSeries("verify", verifyItems)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return bar.Render(f)
}
