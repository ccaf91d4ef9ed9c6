package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/examples/person"
	"tomapper/mapper"
	"tomapper/options"
)

func TestCollectorCountsConversions(t *testing.T) {
	c := NewCollector("")

	e, err := mapper.New(person.Catalog(), mapper.WithInterceptors(c))
	require.NoError(t, err)

	_, err = e.ConvertNew(&person.PersonTO{Name: "a", Address: &person.AddressTO{ID: 1}})
	require.NoError(t, err)

	_, err = e.ConvertNew(&person.PersonTO{Gender: "bogus"})
	require.Error(t, err)

	_, err = mapper.To[*person.PersonTO](e, &person.Person{Name: "b"})
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(c.conversions.WithLabelValues("to_domain", "person.PersonTO", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.conversions.WithLabelValues("to_domain", "person.PersonTO", OutcomeError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.conversions.WithLabelValues("to_domain", "person.AddressTO", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.conversions.WithLabelValues("to_transfer", "person.PersonTO", OutcomeOK)), 0)

	assert.Equal(t, 3, testutil.CollectAndCount(c.duration))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("custom")

	require.NoError(t, c.Register(reg))
	assert.Error(t, c.Register(reg), "duplicate registration")

	c.conversions.WithLabelValues("to_domain", "x", OutcomeOK).Inc()

	n, err := testutil.GatherAndCount(reg, "custom_conversions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFromConfigUsesNamespace(t *testing.T) {
	cfg := options.Default()
	cfg.Metrics.Namespace = "shop"

	reg := prometheus.NewRegistry()
	c := FromConfig(cfg)
	require.NoError(t, c.Register(reg))

	e, err := mapper.New(person.Catalog(), mapper.WithConfig(cfg), mapper.WithInterceptors(c))
	require.NoError(t, err)

	_, err = e.ConvertNew(&person.AddressTO{ID: 1})
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "shop_conversions_total", "shop_conversion_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(reg, "tomapper_conversions_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFromConfigDefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := FromConfig(options.Default())
	require.NoError(t, c.Register(reg))

	c.conversions.WithLabelValues("to_domain", "x", OutcomeOK).Inc()

	n, err := testutil.GatherAndCount(reg, "tomapper_conversions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
