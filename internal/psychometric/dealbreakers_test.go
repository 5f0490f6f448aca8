package psychometric

import (
	"reflect"
	"testing"
)

func withDealbreakers(d ...Dealbreaker) *Analysis {
	return &Analysis{Dealbreakers: d}
}

func TestDetectDealbreakerConflicts(t *testing.T) {
	tests := []struct {
		name string
		a, b *Analysis
		want []string
	}{
		{
			name: "kids want vs not",
			a:    withDealbreakers(Dealbreaker{Type: "kids", Value: "definitely_want"}),
			b:    withDealbreakers(Dealbreaker{Type: "kids", Value: "definitely_not"}),
			want: []string{"kids"},
		},
		{
			name: "type padded and cased differently",
			a:    withDealbreakers(Dealbreaker{Type: " Kids ", Value: "definitely_want"}),
			b:    withDealbreakers(Dealbreaker{Type: "kids\n", Value: "definitely_not"}),
			want: []string{"kids"},
		},
		{
			name: "kids probably both sides",
			a:    withDealbreakers(Dealbreaker{Type: "kids", Value: "probably_want"}),
			b:    withDealbreakers(Dealbreaker{Type: "kids", Value: "probably_not"}),
			want: []string{"kids"},
		},
		{
			name: "kids unsure is fine",
			a:    withDealbreakers(Dealbreaker{Type: "kids", Value: "definitely_want"}),
			b:    withDealbreakers(Dealbreaker{Type: "kids", Value: "unsure"}),
		},
		{
			name: "religion both mandatory",
			a:    withDealbreakers(Dealbreaker{Type: "religion", Value: "Christian", Importance: "mandatory"}),
			b:    withDealbreakers(Dealbreaker{Type: "religion", Value: "Muslim", Importance: "mandatory"}),
			want: []string{"religion"},
		},
		{
			name: "religion one side flexible",
			a:    withDealbreakers(Dealbreaker{Type: "religion", Value: "Christian", Importance: "mandatory"}),
			b:    withDealbreakers(Dealbreaker{Type: "religion", Value: "Muslim", Importance: "flexible"}),
		},
		{
			name: "location strict different cities",
			a:    withDealbreakers(Dealbreaker{Type: "location", Value: "Lagos", Importance: "strict"}),
			b:    withDealbreakers(Dealbreaker{Type: "location", Value: "Abuja", Importance: "strict"}),
			want: []string{"location"},
		},
		{
			name: "location strict same city",
			a:    withDealbreakers(Dealbreaker{Type: "location", Value: "Lagos", Importance: "strict"}),
			b:    withDealbreakers(Dealbreaker{Type: "location", Value: "lagos", Importance: "strict"}),
		},
		{
			name: "incompatible_with list",
			a:    withDealbreakers(Dealbreaker{Type: "smoking", Value: "never", IncompatibleWith: []string{"regularly"}}),
			b:    withDealbreakers(Dealbreaker{Type: "smoking", Value: "regularly"}),
			want: []string{"smoking"},
		},
		{
			name: "several categories",
			a: withDealbreakers(
				Dealbreaker{Type: "location", Value: "Lagos", Importance: "strict"},
				Dealbreaker{Type: "kids", Value: "definitely_not"},
			),
			b: withDealbreakers(
				Dealbreaker{Type: "kids", Value: "definitely_want"},
				Dealbreaker{Type: "location", Value: "Accra", Importance: "strict"},
			),
			want: []string{"kids", "location"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDealbreakerConflicts(tt.a, tt.b)
			var cats []string
			for _, c := range got {
				cats = append(cats, c.Category)
			}
			if !reflect.DeepEqual(cats, tt.want) {
				t.Fatalf("categories: want=%v got=%v", tt.want, cats)
			}

			swapped := DetectDealbreakerConflicts(tt.b, tt.a)
			if !reflect.DeepEqual(got, swapped) {
				t.Fatalf("not symmetric: %+v vs %+v", got, swapped)
			}
		})
	}
}

func TestDetectDealbreakerConflictsNil(t *testing.T) {
	if got := DetectDealbreakerConflicts(nil, withDealbreakers()); got != nil {
		t.Fatalf("nil analysis: want=nil got=%v", got)
	}
}
