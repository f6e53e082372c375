package config

import (
	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// InitSupabase initializes the shared Supabase client from the loaded
// configuration. Must be called before any store or storage access.
func InitSupabase(cfg *Config) error {
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return err
	}
	SupabaseClient = client
	Log.Info("Supabase client initialized")
	return nil
}
