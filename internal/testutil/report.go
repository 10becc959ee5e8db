package testutil

// ReportOut is a RORB report for the fixture catalog: two pluvio groups
// (subareas 1,3 and 2), an aggregate excess table, and hydrographs printed
// in two column blocks at 15 minute increments.
const ReportOut = `RORB  version 6.45
Input of parameters:
 Simulation period 2024-01-01 00:00:00 - 2024-01-01 00:15:00
 Rainfall, mm, in time inc. following time shown
   0.50 hours    1.0   2.0
 Pluvi. ref. no.   1  3

 Rainfall excess
 Incs  ment  area     1      3
                      mm     mm
    1     1   10.0   0.50   0.00
    2     1   10.0   1.25   2.00
  ----------------------------------
 Tot.               1.75   2.00

 Time increment  0.25 hours
 Rainfall, mm, in time inc. following time shown
    0.0
 Pluvi. ref. no.   2

 Incs  ment  area     2
                      mm
    1     1    5.0   0.10
    2     1    5.0   0.20
  ------
 Tot.               0.30

 Incs  ment  area   all
                     mm
    1     1   15.0   0.60
    2     1   15.0   3.45
  ------
 Tot.               4.05
Routing results:
 Inc   Hyd001   Hyd003
   0     1.2    9.0
   1     3.4    9.1
   2     5.6    9.2

 Inc   Hyd002
   0     0.1
   1     0.2
   2     0.3

 End of run
`

// TraceCSV is the gate-operation trace of storage 410571.
const TraceCSV = `iTime, waterLevel , SRes, qSimIn(iTime), qSimOut(iTime), gate_open
1, 1082.5, 1500, 10, 12, 0.25
61, 1082.6, 1510, 11, 13, 1.0
`
