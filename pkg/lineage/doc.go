// Package lineage defines the wire types for workflow lineage graphs.
//
// A lineage graph has one node per workflow definition and one directed edge per
// dependency between workflows (the source workflow must run before the target).
// The same types are used for JSON files, MongoDB documents, cache entries and
// API responses.
//
// # Wire Format
//
//	{
//	  "nodes": [
//	    {"id": "1", "name": "ods_user_daily", "workFlowPublishStatus": "1",
//	     "schedulePublishStatus": "1", "crontab": "0 0 2 * * ? *",
//	     "scheduleStartTime": "2023-01-01 00:00:00",
//	     "scheduleEndTime": "2123-01-01 00:00:00"},
//	    {"id": "2", "name": "dwd_user", "workFlowPublishStatus": "0"}
//	  ],
//	  "edges": [{"source": "1", "target": "2"}]
//	}
//
// Field names follow the lineage API of the scheduler so documents can be fed
// through unchanged.
//
// # Status Codes
//
// Publish and schedule states are small string codes rather than enums because
// the upstream data is not guaranteed to stay within the documented set:
//
//	StatusOffline ("0")  workflow or schedule is not online
//	StatusOnline  ("1")  workflow or schedule is online
//
// Any other value is carried through untouched.
package lineage
