package manifest

// JSON Schema (draft 2020-12) documents for the two manifest kinds. The
// schemas gate shape only; value-level judgments (phase counts, checksum
// equality, quorum arithmetic) belong to the verification phases.

const runManifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://ctt.schemas.local/run-manifest.schema.json",
  "type": "object",
  "required": ["contract_id", "pipeline", "phases"],
  "additionalProperties": false,
  "properties": {
    "contract_id": {"type": "string", "minLength": 1},
    "pipeline": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/$defs/phaseLabel"}
    },
    "phases": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "contract_definition": {
          "type": "object",
          "required": ["declared_phase_count"],
          "additionalProperties": false,
          "properties": {
            "declared_phase_count": {"type": "integer", "minimum": 0}
          }
        },
        "thermal_testing": {
          "type": "object",
          "required": ["bound", "samples"],
          "additionalProperties": false,
          "properties": {
            "bound": {"type": "integer", "minimum": 0},
            "samples": {
              "type": "array",
              "minItems": 1,
              "items": {"type": "integer", "minimum": 0}
            }
          }
        },
        "effects_tracking": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "declared": {"type": "array", "items": {"type": "string"}},
            "observed": {"type": "array", "items": {"type": "string"}}
          }
        },
        "state_machine_validation": {
          "type": "object",
          "required": ["initial", "valid_states"],
          "additionalProperties": false,
          "properties": {
            "initial": {"type": "string"},
            "valid_states": {
              "type": "array",
              "minItems": 1,
              "items": {"type": "string"}
            },
            "transitions": {
              "type": "object",
              "additionalProperties": {
                "type": "object",
                "additionalProperties": {"type": "string"}
              }
            },
            "events": {"type": "array", "items": {"type": "string"}}
          }
        },
        "receipt_generation": {
          "type": "object",
          "required": ["version", "declared_checksum", "computed_checksum"],
          "additionalProperties": false,
          "properties": {
            "version": {"type": "integer", "minimum": 0},
            "declared_checksum": {"type": "integer", "minimum": 0},
            "computed_checksum": {"type": "integer", "minimum": 0}
          }
        },
        "swarm_orchestration": {
          "type": "object",
          "required": ["scheduled", "executed"],
          "additionalProperties": false,
          "properties": {
            "scheduled": {"type": "integer", "minimum": 0},
            "executed": {"type": "integer", "minimum": 0}
          }
        },
        "verification_pipeline": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "expected": {"type": "array", "items": {"type": "string"}}
          }
        },
        "continuous_learning": {
          "type": "object",
          "required": ["samples", "prediction"],
          "additionalProperties": false,
          "properties": {
            "samples": {"type": "integer"},
            "prediction": {"type": "number"}
          }
        },
        "distributed_consensus": {
          "type": "object",
          "required": ["approvals", "total"],
          "additionalProperties": false,
          "properties": {
            "approvals": {"type": "integer", "minimum": 0},
            "total": {"type": "integer", "minimum": 0}
          }
        },
        "time_travel_debugging": {
          "type": "object",
          "required": ["snapshot_version", "expected_version"],
          "additionalProperties": false,
          "properties": {
            "snapshot_version": {"type": "integer", "minimum": 0},
            "expected_version": {"type": "integer", "minimum": 0}
          }
        },
        "performance_prophet": {
          "type": "object",
          "required": ["predicted_tau", "confidence"],
          "additionalProperties": false,
          "properties": {
            "predicted_tau": {"type": "number"},
            "confidence": {"type": "number"}
          }
        },
        "quality_dashboard": {
          "type": "object",
          "required": ["total", "passed", "failed"],
          "additionalProperties": false,
          "properties": {
            "total": {"type": "integer", "minimum": 0},
            "passed": {"type": "integer", "minimum": 0},
            "failed": {"type": "integer", "minimum": 0}
          }
        }
      }
    }
  },
  "$defs": {
    "phaseLabel": {
      "enum": [
        "contract_definition",
        "thermal_testing",
        "effects_tracking",
        "state_machine_validation",
        "receipt_generation",
        "swarm_orchestration",
        "verification_pipeline",
        "continuous_learning",
        "distributed_consensus",
        "time_travel_debugging",
        "performance_prophet",
        "quality_dashboard"
      ]
    }
  }
}`

const operatorCatalogSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://ctt.schemas.local/operator-catalog.schema.json",
  "type": "object",
  "required": ["catalog_version", "operators"],
  "additionalProperties": false,
  "properties": {
    "catalog_version": {"type": "string", "minLength": 1},
    "operators": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "pattern", "name", "category", "properties", "max_latency", "guards"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "pattern": {"type": "integer", "minimum": 1},
          "name": {"type": "string", "minLength": 1},
          "category": {
            "enum": [
              "contract", "thermal", "effects", "state", "integrity",
              "swarm", "pipeline", "learning", "consensus", "snapshot",
              "prophecy", "reporting"
            ]
          },
          "properties": {
            "type": "object",
            "required": ["deterministic", "idempotent", "type_preserving", "bounded"],
            "additionalProperties": false,
            "properties": {
              "deterministic": {"type": "boolean"},
              "idempotent": {"type": "boolean"},
              "type_preserving": {"type": "boolean"},
              "bounded": {"type": "boolean"}
            }
          },
          "max_latency": {
            "type": "string",
            "pattern": "^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"
          },
          "guards": {
            "type": "array",
            "minItems": 1,
            "uniqueItems": true,
            "items": {
              "enum": ["LEGALITY", "BUDGET", "CHRONOLOGY", "CAUSALITY", "RECURSION"]
            }
          }
        }
      }
    }
  }
}`
