package tax

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTableMarginalTax(t *testing.T) {
	table := DefaultTable()

	cases := []struct {
		income float64
		want   float64
	}{
		{0, 0},
		{18200, 18200 * 0.02},
		{45000, (45000-18200)*0.16 + 45000*0.02},
		{100000, (45000-18200)*0.16 + (100000-45000)*0.30 + 100000*0.02},
		{250000, (45000-18200)*0.16 + (135000-45000)*0.30 + (190000-135000)*0.37 + (250000-190000)*0.45 + 250000*0.02},
	}
	for _, tc := range cases {
		got := table.Tax(tc.income)
		require.InDelta(t, tc.want, got.TaxPayable, 1e-6, "income %v", tc.income)
	}
}

func TestTaxIsProgressiveAndMonotonic(t *testing.T) {
	table := DefaultTable()
	prevTax, prevRate := 0.0, 0.0
	for income := 1000.0; income <= 400000; income += 1000 {
		a := table.Tax(income)
		require.GreaterOrEqual(t, a.TaxPayable, prevTax)
		require.GreaterOrEqual(t, a.EffectiveRate+1e-12, prevRate)
		prevTax, prevRate = a.TaxPayable, a.EffectiveRate
	}
}

func TestScheduleChoosesLatestTableNotAfterYear(t *testing.T) {
	s, err := NewSchedule(
		Table{Year: 2030, Brackets: []Bracket{{0, 0.5}}},
		Table{Year: 2020, Brackets: []Bracket{{0, 0.1}}},
	)
	require.NoError(t, err)

	require.Equal(t, 2020, s.TableFor(2010).Year)
	require.Equal(t, 2020, s.TableFor(2029).Year)
	require.Equal(t, 2030, s.TableFor(2031).Year)

	a, err := s.Resolve(1000, 2035)
	require.NoError(t, err)
	require.InDelta(t, 500, a.TaxPayable, 1e-9)
}

func TestNewScheduleRejectsBadTables(t *testing.T) {
	_, err := NewSchedule()
	require.Error(t, err)
	_, err = NewSchedule(Table{Year: 2024, Brackets: []Bracket{{100, 0.1}, {50, 0.2}}})
	require.Error(t, err)
	_, err = NewSchedule(Table{Year: 2024, Brackets: []Bracket{{0, 1.5}}})
	require.Error(t, err)
	_, err = NewSchedule(
		Table{Year: 2024, Brackets: []Bracket{{0, 0.1}}},
		Table{Year: 2024, Brackets: []Bracket{{0, 0.2}}},
	)
	require.Error(t, err)
}

func TestParseScheduleTOML(t *testing.T) {
	data := []byte(`
[[table]]
year = 2025
levy = 0.02

[[table.brackets]]
threshold = 0
rate = 0

[[table.brackets]]
threshold = 20000
rate = 0.2
`)
	s, err := ParseSchedule(data)
	require.NoError(t, err)
	a, err := s.Resolve(30000, 2025)
	require.NoError(t, err)
	require.InDelta(t, 10000*0.2+30000*0.02, a.TaxPayable, 1e-9)
}

func TestFlatRate(t *testing.T) {
	a, err := FlatRate(0.25).Resolve(1000, 2024)
	require.NoError(t, err)
	require.InDelta(t, 250, a.TaxPayable, 1e-9)
	require.InDelta(t, 0.25, a.EffectiveRate, 1e-9)
}

func TestRegistryFetchesAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/tables/2026" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"year":2026,"brackets":[{"threshold":0,"rate":0.1}],"levy":0}`))
	}))
	defer srv.Close()

	reg := NewRegistry(srv.URL, nil)
	a, err := reg.Resolve(1000, 2026)
	require.NoError(t, err)
	require.InDelta(t, 100, a.TaxPayable, 1e-9)

	_, err = reg.Resolve(2000, 2026)
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestRegistryFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := NewRegistry(srv.URL, DefaultSchedule())
	reg.Prefetch([]int{2024, 2025})
	require.Equal(t, DefaultTable(), reg.Table(2025))
}

func TestRegistryWithoutURLUsesFallback(t *testing.T) {
	reg := NewRegistry("", nil)
	a, err := reg.Resolve(100000, 2024)
	require.NoError(t, err)
	require.InDelta(t, DefaultTable().Tax(100000).TaxPayable, a.TaxPayable, 1e-9)
}

func TestFixedYearIgnoresRequestedYear(t *testing.T) {
	s, err := NewSchedule(
		Table{Year: 2020, Brackets: []Bracket{{0, 0.1}}},
		Table{Year: 2030, Brackets: []Bracket{{0, 0.5}}},
	)
	require.NoError(t, err)

	a, err := FixedYear{Resolver: s, Year: 2020}.Resolve(100, 2040)
	require.NoError(t, err)
	require.InDelta(t, 10, a.TaxPayable, 1e-9)
}
