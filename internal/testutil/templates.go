package testutil

// GateOpsTemplate is a gate-ops template for storage 410571 whose
// elevation-storage table maps 1082.5 to 1500.
const GateOpsTemplate = `HappyJacks gate operations
Time step (h): {gateops_timestep_minute}
Initial storage: {initial_reservoir_storage}
Procedure
-
2 ! outflow pairs
1 ! gate openings
1 ! level-opening pairs
3 ! elevation-storage pairs
0 0
100 50
1080.0 1.0
1080 1000
1085 2000
1090, 4000
`

// Templates returns one template per file rendered for the fixtures.
func Templates() map[string]string {
	return map[string]string{
		"Template_Rainfall.stm": `{start_time} to {end_time}
{stm_setting}
{pluvio_setting}
{all_subarea_temporal_patterns}
{subarea_rainfall}
{pluvio_choice}
{baseflow_setting}
{all_baseflow_hydrographs}
`,
		"Template_RORB_CMD.par": `Catchment :{catg_file}
Storm :{stm_file}
Bursts {num_burst}
ISA count {num_isa}
{loss_params_isa}
{routing_params_isa}
Gates :{gate_file}
{snow_file}
{matching_file}
END
`,
		"Template_catchment.catg": "catchment {{as is}}\n",
		"Template_Snowmelt.dat": `{temp_number_increment}
{temp_timeseries}
{wind_number_increment}
{wind_timeseries}
{num_elezone}
{snowmelt_water_content_elezone}
{snowmelt_weighted_snowpack_density}
`,
		"Template_GateOps_HappyJacks_auto.dat": GateOpsTemplate,
		"Template_GateOps_HappyJacks_open.dat": GateOpsTemplate,
		"Template_GateOpsTransfer.dat":         "{in} {out}\n{transfer}\n",
		"Template_GateOpsOverride.dat":         "{gate_override}\n{outflow_opening}\n",
		"Template_multiGateOps.dat": `{gateops_number}
{gateops_storages_and_files}
{transfer_number} {transfer_timestep_hour} {transfer_number_timestep}
{transfer_files}
{operation_number} {operation_timestep_hour} {operation_number_timestep}
{operation_files}
`,
	}
}
