// Package harness runs scripted ledger scenarios.
//
// A scenario drives the real ledger against a fresh in-memory store with a
// fixed clock and sequential payment references, so the same file always
// produces the same ids, dates and references. Each step's outcome is
// checked against its expect clause, the final state is checked against the
// assertions, and the outcomes can be compared with a golden snapshot.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: renew_open_membership
//	description: "What this scenario validates"
//	today: 2024-01-01
//	policy:
//	  renewal_base: expiration
//	setup:
//	  - op: create_membership_type
//	    as: silver
//	    args: { name: Silver }
//	  - op: create_person
//	    as: alex
//	    args: { name: Alex }
//	flow:
//	  - op: record_payment
//	    as: p1
//	    args: { person: $alex, amounts: [60.00] }
//	  - op: renew
//	    args: { membership: $m1, pricing_option: $quarter, item: $p1.1 }
//	    expect:
//	      result: { new_end_date: 2024-04-01 }
//	assertions:
//	  - type: final_state
//	    entity: payment_item
//	    id: $p1.1
//	    expect: { allocation: dues }
//	  - type: outcome_count
//	    op: renew
//	    error: PAYMENT_ITEM_ALREADY_ALLOCATED
//	    count: 1
//
// "as" binds the id a step produced; later steps and assertions refer to it
// as "$name". OpNames lists the operations a step may run.
//
// # Assertion Types
//
//   - final_state: loads a person, membership, event, payment_item,
//     guest_sheet or conduct record and compares fields (subset match)
//   - outcome_count: counts steps of an op that ended with an error code, or
//     with success when error is empty
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/renewal.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
