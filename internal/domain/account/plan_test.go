package account

import "testing"

func TestResolveLimitsPresets(t *testing.T) {
	free, err := ResolveLimits(PlanFree, nil)
	if err != nil {
		t.Fatalf("ResolveLimits: %v", err)
	}
	if free.DailyGenerations == nil || *free.DailyGenerations != 5 {
		t.Fatalf("free daily=%v", free.DailyGenerations)
	}
	if free.PriorityRouting || free.BrandVoice {
		t.Fatalf("free plan should not route with priority or allow brand voice: %+v", free)
	}

	pro, err := ResolveLimits(PlanPro, nil)
	if err != nil {
		t.Fatalf("ResolveLimits: %v", err)
	}
	if pro.DailyGenerations != nil || pro.MaxBlogLength != nil {
		t.Fatalf("pro should be unlimited: %+v", pro)
	}
	if !pro.PriorityRouting {
		t.Fatalf("pro should have priority routing")
	}
}

func TestResolveLimitsOverridesWin(t *testing.T) {
	got, err := ResolveLimits(PlanFree, []byte(`{"max_platforms_per_request":1,"daily_generations":null,"brand_voice":true,"unknown":7}`))
	if err != nil {
		t.Fatalf("ResolveLimits: %v", err)
	}
	if got.MaxPlatformsPerRequest == nil || *got.MaxPlatformsPerRequest != 1 {
		t.Fatalf("platform override lost: %v", got.MaxPlatformsPerRequest)
	}
	if got.DailyGenerations != nil {
		t.Fatalf("explicit null should mean unlimited, got %v", *got.DailyGenerations)
	}
	if !got.BrandVoice {
		t.Fatalf("brand_voice override lost")
	}
	if got.MaxBlogLength == nil || *got.MaxBlogLength != 2000 {
		t.Fatalf("untouched preset changed: %v", got.MaxBlogLength)
	}
}

func TestResolveLimitsRejectsBadOverride(t *testing.T) {
	if _, err := ResolveLimits(PlanFree, []byte(`{"daily_generations":"many"}`)); err == nil {
		t.Fatalf("expected error for non-numeric override")
	}
}
