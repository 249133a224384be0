package parser

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConcurrentParsing tests that 100 goroutines can parse simultaneously
// without race conditions or deadlocks.
func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)

	source := []byte("export let x: number = 1;")
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			tree, err := manager.Parse(context.Background(), source, LanguageTypeScript)
			if err != nil {
				errChan <- err
				return
			}
			tree.Close()
		}()
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs, "No errors should occur during concurrent parsing")

	stats := manager.GetStats()
	maxPoolSize := getDefaultPoolSize()
	assert.LessOrEqual(t, stats.ParsersCreated, maxPoolSize, "Should create at most %d parsers in pool", maxPoolSize)
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}

// TestConcurrentTreesAreIsolated checks that every caller gets a tree for
// its own source even when parsers are shared through the pool.
func TestConcurrentTreesAreIsolated(t *testing.T) {
	manager := NewParserManager(testLogger(), WithPoolSize(2))
	defer manager.Close()

	const numGoroutines = 40
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	mismatches := make(chan string, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			source := []byte(fmt.Sprintf("export let prop%d: string;", id))
			tree, err := manager.Parse(context.Background(), source, LanguageTypeScript)
			if err != nil {
				mismatches <- err.Error()
				return
			}
			defer tree.Close()

			if got := tree.RootNode().Utf8Text(source); got != string(source) {
				mismatches <- got
			}
		}(i)
	}

	wg.Wait()
	close(mismatches)

	var got []string
	for m := range mismatches {
		got = append(got, m)
	}
	assert.Empty(t, got)
	assert.LessOrEqual(t, manager.GetStats().ParsersCreated, 2)
}

// TestConcurrentMultiLanguage tests concurrent parsing of different languages.
func TestConcurrentMultiLanguage(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	const goroutinesPerLanguage = 20
	languages := SupportedLanguages()
	numGoroutines := len(languages) * goroutinesPerLanguage

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)

	for _, lang := range languages {
		for i := 0; i < goroutinesPerLanguage; i++ {
			go func(l Language) {
				defer wg.Done()

				tree, err := manager.Parse(context.Background(), []byte("let x = 1;"), l)
				if err != nil {
					errChan <- err
					return
				}
				tree.Close()
			}(lang)
		}
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs)

	stats := manager.GetStats()
	assert.GreaterOrEqual(t, stats.ParsersCreated, len(languages), "Should create at least one parser per language")
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}
